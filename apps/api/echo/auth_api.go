package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/auth"
)

// userDetailsRedirect is where the frontend sends a student right after login.
var userDetailsRedirect = "/user-details"

type authApi struct {
	svc  auth.Service
	conf *core.Config
}

func registerAuthAPI(g *echo.Group, svc auth.Service, conf *core.Config) {
	api := authApi{svc: svc, conf: conf}

	ag := g.Group("/auth/email")
	ag.POST("/request", api.requestOTP)
	ag.POST("/verify", api.verifyOTP)
}

type (
	otpRequest struct {
		Email string `json:"email"`
	}

	otpVerifyRequest struct {
		Email   string `json:"email"`
		OTPCode string `json:"otpCode"`
	}
)

func (api *authApi) requestOTP(ctx echo.Context) error {
	var data otpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to otpRequest")
	}

	if err := api.svc.RequestChallenge(ctx.Request().Context(), data.Email); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "OTP sent to email successfully",
	})
}

func (api *authApi) verifyOTP(ctx echo.Context) error {
	var data otpVerifyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to otpVerifyRequest")
	}

	usr, err := api.svc.VerifyChallenge(ctx.Request().Context(), data.Email, data.OTPCode)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "OTP verified successfully",
		"token":      token,
		"user":       usr.Public(),
		"redirectTo": userDetailsRedirect,
	})
}
