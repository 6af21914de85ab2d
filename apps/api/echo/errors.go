package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/auth"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// notFoundErrs maps domain sentinel errors to a 404.
var notFoundErrs = map[error]bool{
	user.ErrNotFound:      true,
	course.ErrNotFound:    true,
	enroll.ErrNotFound:    true,
	enroll.ErrNotEnrolled: true,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that translates
// our errors into the `{success:false, message}` envelope.
// signalShutdown is called whenever a core shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}
			fldErrs map[string]string
		)

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = "validation failed"
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
			}
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			if notFoundErrs[cause] {
				code = http.StatusNotFound
				message = cause.Error()
				break
			}
			if cause == auth.ErrMailNotConfigured {
				code = http.StatusInternalServerError
				message = "email service not configured, please contact support"
				break
			}
			if cause == user.ErrInvalidCredentials {
				code = http.StatusUnauthorized
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		resp := echo.Map{"success": false, "message": message}
		if len(fldErrs) > 0 {
			resp["errors"] = fldErrs
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
