package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/auth"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/payment"
	"github.com/trezcool/mtihani/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		// SignalShutdown is called when a handler returns a shutdown error.
		SignalShutdown func()

		UserSvc    user.Service
		AuthSvc    auth.Service
		CourseSvc  course.Service
		EnrollSvc  enroll.Service
		PaymentSvc payment.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	initAuth(opts.Conf)

	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(g, s.opts.AuthSvc, conf)
	registerUserAPI(g, jwt, s.opts.UserSvc, s.opts.EnrollSvc, validate)
	registerCourseAPI(g, jwt, s.opts.CourseSvc)
	registerPaymentAPI(g, jwt, s.opts.UserSvc, s.opts.PaymentSvc)
	registerAdminAPI(g, jwt, s.opts.UserSvc, s.opts.CourseSvc, s.opts.EnrollSvc, validate)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "message": "Mtihani API"})
}
