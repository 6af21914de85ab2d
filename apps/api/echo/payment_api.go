package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/payment"
	"github.com/trezcool/mtihani/core/user"
)

type paymentApi struct {
	usrSvc user.Service
	svc    payment.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc user.Service, svc payment.Service) {
	api := paymentApi{usrSvc: usrSvc, svc: svc}

	pg := g.Group("/pay", jwt)
	pg.POST("/create-order", api.createOrder)
	pg.POST("/verify", api.verify)

	upg := g.Group("/user/payment", jwt)
	upg.POST("/create-order", api.createOrder) // frontend compatibility alias
	upg.POST("/verify-and-unlock", api.verifyAndUnlock)
}

func (api *paymentApi) createOrder(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	var data payment.NewOrder
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOrder")
	}

	info, err := api.svc.CreateOrder(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"order":   info.Order,
		"keyId":   info.KeyID,
	})
}

func (api *paymentApi) verify(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	var data payment.VerifyPayment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyPayment")
	}

	enr, err := api.svc.Verify(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "Payment verified successfully",
		"enrollment": enrollmentSummary(enr),
	})
}

type unlockRequest struct {
	CourseID string `json:"courseId"`
}

func (api *paymentApi) verifyAndUnlock(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	var data unlockRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to unlockRequest")
	}

	enr, err := api.svc.UnlockDemo(ctx.Request().Context(), usr, data.CourseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "Course unlocked successfully",
		"enrollment": enrollmentSummary(enr),
	})
}

func enrollmentSummary(enr enroll.Enrollment) echo.Map {
	return echo.Map{"id": enr.ID, "status": enr.Status}
}
