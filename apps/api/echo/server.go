package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/admin"
	"github.com/wayteam/way-backend/core/catalog"
	"github.com/wayteam/way-backend/core/contact"
	"github.com/wayteam/way-backend/core/event"
	"github.com/wayteam/way-backend/core/page"
	"github.com/wayteam/way-backend/core/registration"
	"github.com/wayteam/way-backend/core/schedule"
	"github.com/wayteam/way-backend/core/tutor"
	"github.com/wayteam/way-backend/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		UserSvc         *user.Service
		AdminSvc        *admin.Service
		TutorSvc        *tutor.Service
		ScheduleSvc     *schedule.Service
		RegistrationSvc *registration.Service
		CatalogSvc      *catalog.Service
		EventSvc        *event.Service
		PageSvc         *page.Service
		ContactSvc      *contact.Service

		Logger core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(ctx context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options, shutdown chan struct{}) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup(shutdown)
	return s
}

func (s *server) setup(shutdown chan struct{}) {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, func() {
		s.app.Logger.Error("integrity issue: shutting down service")
		close(shutdown)
	})
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.RegistrationSvc)
	registerAdminAPI(v1, jwt, s.opts.AdminSvc)
	registerTutorAPI(v1, jwt, s.opts.TutorSvc, s.opts.ScheduleSvc, s.opts.RegistrationSvc)
	registerScheduleAPI(v1, jwt, s.opts.ScheduleSvc, s.opts.RegistrationSvc)
	registerRegistrationAPI(v1, jwt, s.opts.RegistrationSvc)
	registerCatalogAPI(v1, jwt, s.opts.CatalogSvc)
	registerEventAPI(v1, jwt, s.opts.EventSvc)
	registerPageAPI(v1, jwt, s.opts.PageSvc)
	registerContactAPI(v1, s.opts.ContactSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+core.Conf.AppName+" API!")
}
