package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/wayteam/way-backend/apps/api/echo"
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
	emailsvc "github.com/wayteam/way-backend/services/email"
	logsvc "github.com/wayteam/way-backend/services/logger"
	"github.com/wayteam/way-backend/storage/database"
	sqlxrepos "github.com/wayteam/way-backend/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!(core.Conf.Debug || core.Conf.TestMode))

	if err := run(logger); err != nil {
		logger.Fatal("running server", err)
	}
}

func run(logger core.Logger) error {
	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return err
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return err
	}
	defer db.Close()
	if err = database.Migrate(db); err != nil {
		return err
	}
	dbx := sqlx.NewDb(db, core.Conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	mailer := registration.NewMailer(mailSvc)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(dbx), mailSvc, logger)
	admSvc := admin.NewService(sqlxrepos.NewAdminRepository(dbx))
	tutSvc := tutor.NewService(sqlxrepos.NewTutorRepository(dbx))
	regRepo := sqlxrepos.NewRegistrationRepository(dbx)
	schdSvc := schedule.NewService(sqlxrepos.NewScheduleRepository(dbx), regRepo, mailer, logger)
	regSvc := registration.NewService(regRepo, usrSvc, schdSvc, tutSvc, mailer, logger)
	catSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(dbx), mailSvc)
	eventSvc := event.NewService(sqlxrepos.NewEventRepository(dbx), mailSvc)
	pageSvc := page.NewService(sqlxrepos.NewPageRepository(dbx))
	contactSvc := contact.NewService(mailSvc)

	// start API server
	shutdown := make(chan struct{})
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:            core.Conf.Server.Addr,
			UserSvc:         usrSvc,
			AdminSvc:        admSvc,
			TutorSvc:        tutSvc,
			ScheduleSvc:     schdSvc,
			RegistrationSvc: regSvc,
			CatalogSvc:      catSvc,
			EventSvc:        eventSvc,
			PageSvc:         pageSvc,
			ContactSvc:      contactSvc,
			Logger:          logger,
		},
		shutdown,
	)
	go app.Start()

	// block until SIGINT/SIGTERM or an integrity issue signals shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-shutdown:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Stop(ctx)
}
