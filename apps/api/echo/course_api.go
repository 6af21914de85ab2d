package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/course"
)

type courseApi struct {
	svc course.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service) {
	api := courseApi{svc: svc}

	// public catalog
	g.GET("/courses/published", api.published)

	sg := g.Group("/student", jwt)
	sg.GET("/course/:courseId/structure", api.structure)
	sg.GET("/course/:courseId/subjects", api.subjects)
	sg.GET("/subject/:subjectId/chapters", api.chapters)
	sg.GET("/chapter/:chapterId/topics", api.topics)
	sg.GET("/topic/:topicId/tests", api.tests)
}

func (api *courseApi) published(ctx echo.Context) error {
	courses, err := api.svc.PublishedCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying published courses")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "courses": courses})
}

func (api *courseApi) structure(ctx echo.Context) error {
	structure, err := api.svc.GetStructure(ctx.Request().Context(), ctx.Param("courseId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "structure": structure})
}

func (api *courseApi) subjects(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	filter := course.QueryFilter{CourseID: ctx.Param("courseId")}
	subjects, total, err := api.svc.FilterSubjects(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, listResponse("subjects", subjects, total, paging))
}

func (api *courseApi) chapters(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	filter := course.QueryFilter{SubjectID: ctx.Param("subjectId")}
	chapters, total, err := api.svc.FilterChapters(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "querying chapters")
	}
	return ctx.JSON(http.StatusOK, listResponse("chapters", chapters, total, paging))
}

func (api *courseApi) topics(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	filter := course.QueryFilter{ChapterID: ctx.Param("chapterId")}
	topics, total, err := api.svc.FilterTopics(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	return ctx.JSON(http.StatusOK, listResponse("topics", topics, total, paging))
}

func (api *courseApi) tests(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	filter := course.QueryFilter{TopicID: ctx.Param("topicId")}
	tests, total, err := api.svc.FilterTests(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	return ctx.JSON(http.StatusOK, listResponse("tests", tests, total, paging))
}
