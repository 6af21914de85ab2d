package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
)

type userApi struct {
	svc      user.Service
	enrSvc   enroll.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service, enrSvc enroll.Service, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		enrSvc:   enrSvc,
		validate: validate,
	}

	ug := g.Group("/user", jwt)
	ug.GET("/verify-token", api.verifyToken)
	ug.POST("/update-details", api.updateDetails)
	ug.GET("/my-courses", api.myCourses)

	pg := g.Group("/progress", jwt)
	pg.GET("/course/:courseId", api.courseProgress)
}

// userDetails is the profile shape the frontend binds its forms to.
func userDetails(usr user.User) echo.Map {
	return echo.Map{
		"id":          usr.ID,
		"name":        usr.Name,
		"email":       usr.Email,
		"phoneNumber": usr.PhoneNumber,
		"city":        usr.City,
		"gender":      usr.Gender,
		"dob":         usr.DOB,
		"profilePic":  usr.ProfilePic,
		"role":        usr.Role,
	}
}

func (api *userApi) verifyToken(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "user": userDetails(usr)})
}

func (api *userApi) updateDetails(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}

	var data user.UpdateDetails
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDetails")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	usr, err = api.svc.UpdateDetails(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user details")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Details updated successfully",
		"user":    userDetails(usr),
	})
}

func (api *userApi) myCourses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}

	courses, err := api.enrSvc.MyCourses(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrolled courses")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "courses": courses})
}

func (api *userApi) courseProgress(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}

	progress, err := api.enrSvc.CourseProgress(ctx.Request().Context(), usr.ID, ctx.Param("courseId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "progress": progress})
}
