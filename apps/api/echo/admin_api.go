package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
)

type adminApi struct {
	usrSvc   user.Service
	crsSvc   course.Service
	enrSvc   enroll.Service
	validate *validator.Validate
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	usrSvc user.Service,
	crsSvc course.Service,
	enrSvc enroll.Service,
	validate *validator.Validate,
) {
	api := adminApi{
		usrSvc:   usrSvc,
		crsSvc:   crsSvc,
		enrSvc:   enrSvc,
		validate: validate,
	}

	g.POST("/admin/login", api.login)

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/dashboard", api.dashboard)

	ag.GET("/users", api.listUsers)
	ag.GET("/students", api.listStudents)
	ag.PUT("/students/:id", api.updateUser)
	ag.DELETE("/students/:id", api.deleteUser)
	ag.GET("/teachers", api.listTeachers)
	ag.POST("/teachers", api.createTeacher)
	ag.PUT("/teachers/:id", api.updateUser)
	ag.DELETE("/teachers/:id", api.deleteUser)

	ag.GET("/courses", api.listCourses)
	ag.POST("/courses", api.createCourse)
	ag.PUT("/courses/:id", api.updateCourse)
	ag.PUT("/courses/:id/toggle-publish", api.togglePublish)
	ag.DELETE("/courses/:id", api.deleteCourse)

	ag.GET("/subjects", api.listSubjects)
	ag.POST("/subjects", api.createSubject)
	ag.PUT("/subjects/:id", api.updateSubject)
	ag.DELETE("/subjects/:id", api.deleteSubject)

	ag.GET("/chapters", api.listChapters)
	ag.POST("/chapters", api.createChapter)
	ag.PUT("/chapters/:id", api.updateChapter)
	ag.DELETE("/chapters/:id", api.deleteChapter)

	ag.GET("/topics", api.listTopics)
	ag.POST("/topics", api.createTopic)
	ag.PUT("/topics/:id", api.updateTopic)
	ag.DELETE("/topics/:id", api.deleteTopic)

	ag.GET("/tests", api.listTests)
	ag.POST("/tests", api.createTest)
	ag.PUT("/tests/:id", api.updateTest)
	ag.DELETE("/tests/:id", api.deleteTest)

	ag.GET("/payments", api.listPayments)
}

// Auth

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *adminApi) login(ctx echo.Context) error {
	var data adminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to adminLoginRequest")
	}

	usr, err := api.usrSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   token,
		"user":    usr.Public(),
	})
}

func (api *adminApi) dashboard(ctx echo.Context) error {
	metrics, err := api.enrSvc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "aggregating dashboard metrics")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "metrics": metrics})
}

// Users

func (api *adminApi) listUsersFiltered(ctx echo.Context, role string) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter user.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if role != "" {
		filter.Role = role
	}

	users, total, err := api.usrSvc.Filter(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering users")
	}
	return ctx.JSON(http.StatusOK, listResponse("users", users, total, paging))
}

func (api *adminApi) listUsers(ctx echo.Context) error {
	return api.listUsersFiltered(ctx, "")
}

func (api *adminApi) listStudents(ctx echo.Context) error {
	return api.listUsersFiltered(ctx, user.RoleStudent)
}

func (api *adminApi) listTeachers(ctx echo.Context) error {
	return api.listUsersFiltered(ctx, user.RoleTeacher)
}

func (api *adminApi) createTeacher(ctx echo.Context) error {
	var data user.NewStaffUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaffUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.usrSvc); err != nil {
		return err
	}

	usr, err := api.usrSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "user": usr})
}

func (api *adminApi) updateUser(ctx echo.Context) error {
	usr, err := api.usrSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(ctx.Request().Context(), usr, api.validate, api.usrSvc); err != nil {
		return err
	}

	usr, err = api.usrSvc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "user": usr})
}

func (api *adminApi) deleteUser(ctx echo.Context) error {
	if _, err := api.usrSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.usrSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "User deleted successfully"})
}

// Courses

func (api *adminApi) listCourses(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter course.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	courses, total, err := api.crsSvc.FilterCourses(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering courses")
	}
	return ctx.JSON(http.StatusOK, listResponse("courses", courses, total, paging))
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.crsSvc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "course": crs})
}

func (api *adminApi) updateCourse(ctx echo.Context) error {
	crs, err := api.crsSvc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err = api.crsSvc.UpdateCourse(ctx.Request().Context(), crs, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "course": crs})
}

func (api *adminApi) togglePublish(ctx echo.Context) error {
	crs, err := api.crsSvc.TogglePublish(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "course": crs})
}

func (api *adminApi) deleteCourse(ctx echo.Context) error {
	if _, err := api.crsSvc.GetCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.crsSvc.DeleteCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Course deleted successfully"})
}

// Subjects

func (api *adminApi) listSubjects(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter course.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	subjects, total, err := api.crsSvc.FilterSubjects(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering subjects")
	}
	return ctx.JSON(http.StatusOK, listResponse("subjects", subjects, total, paging))
}

func (api *adminApi) createSubject(ctx echo.Context) error {
	var data course.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.crsSvc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "subject": sub})
}

func (api *adminApi) updateSubject(ctx echo.Context) error {
	sub, err := api.crsSvc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data course.UpdateName
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateName")
	}

	sub, err = api.crsSvc.UpdateSubject(ctx.Request().Context(), sub, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "subject": sub})
}

func (api *adminApi) deleteSubject(ctx echo.Context) error {
	if _, err := api.crsSvc.GetSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.crsSvc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Subject deleted successfully"})
}

// Chapters

func (api *adminApi) listChapters(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter course.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	chapters, total, err := api.crsSvc.FilterChapters(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering chapters")
	}
	return ctx.JSON(http.StatusOK, listResponse("chapters", chapters, total, paging))
}

func (api *adminApi) createChapter(ctx echo.Context) error {
	var data course.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chp, err := api.crsSvc.CreateChapter(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "chapter": chp})
}

func (api *adminApi) updateChapter(ctx echo.Context) error {
	chp, err := api.crsSvc.GetChapter(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data course.UpdateName
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateName")
	}

	chp, err = api.crsSvc.UpdateChapter(ctx.Request().Context(), chp, data)
	if err != nil {
		return errors.Wrap(err, "updating chapter")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "chapter": chp})
}

func (api *adminApi) deleteChapter(ctx echo.Context) error {
	if _, err := api.crsSvc.GetChapter(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.crsSvc.DeleteChapter(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting chapter")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Chapter deleted successfully"})
}

// Topics

func (api *adminApi) listTopics(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter course.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	topics, total, err := api.crsSvc.FilterTopics(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering topics")
	}
	return ctx.JSON(http.StatusOK, listResponse("topics", topics, total, paging))
}

func (api *adminApi) createTopic(ctx echo.Context) error {
	var data course.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	top, err := api.crsSvc.CreateTopic(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "topic": top})
}

func (api *adminApi) updateTopic(ctx echo.Context) error {
	top, err := api.crsSvc.GetTopic(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data course.UpdateName
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateName")
	}

	top, err = api.crsSvc.UpdateTopic(ctx.Request().Context(), top, data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "topic": top})
}

func (api *adminApi) deleteTopic(ctx echo.Context) error {
	if _, err := api.crsSvc.GetTopic(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.crsSvc.DeleteTopic(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Topic deleted successfully"})
}

// Tests

func (api *adminApi) listTests(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter course.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	tests, total, err := api.crsSvc.FilterTests(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering tests")
	}
	return ctx.JSON(http.StatusOK, listResponse("tests", tests, total, paging))
}

func (api *adminApi) createTest(ctx echo.Context) error {
	var data course.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tst, err := api.crsSvc.CreateTest(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "test": tst})
}

func (api *adminApi) updateTest(ctx echo.Context) error {
	tst, err := api.crsSvc.GetTest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data course.UpdateTest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	tst, err = api.crsSvc.UpdateTest(ctx.Request().Context(), tst, data)
	if err != nil {
		return errors.Wrap(err, "updating test")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "test": tst})
}

func (api *adminApi) deleteTest(ctx echo.Context) error {
	if _, err := api.crsSvc.GetTest(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.crsSvc.DeleteTest(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Test deleted successfully"})
}

// Payments

func (api *adminApi) listPayments(ctx echo.Context) error {
	paging, err := bindPaging(ctx)
	if err != nil {
		return err
	}

	var filter enroll.PaymentQueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to PaymentQueryFilter")
	}

	payments, total, err := api.enrSvc.FilterPayments(ctx.Request().Context(), filter, paging)
	if err != nil {
		return errors.Wrap(err, "filtering payments")
	}
	return ctx.JSON(http.StatusOK, listResponse("payments", payments, total, paging))
}
