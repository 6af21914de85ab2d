package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/mtihani/apps/api/echo"
	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/auth"
	"github.com/trezcool/mtihani/core/course"
	"github.com/trezcool/mtihani/core/enroll"
	"github.com/trezcool/mtihani/core/payment"
	"github.com/trezcool/mtihani/core/user"
	emailsvc "github.com/trezcool/mtihani/services/email"
	logsvc "github.com/trezcool/mtihani/services/logger"
	paymentsvc "github.com/trezcool/mtihani/services/payment"
	"github.com/trezcool/mtihani/storage/database"
)

func main() {
	workDir, err := os.Getwd()
	errAndDie(err)

	conf, err := core.NewConfig(workDir)
	errAndDie(err)

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(database.NewUserRepository(db))
	authSvc := auth.NewService(database.NewAuthRepository(db), usrSvc, mailSvc, conf)
	crsSvc := course.NewService(database.NewCourseRepository(db))
	enrSvc := enroll.NewService(database.NewEnrollRepository(db), crsSvc, usrSvc)
	pmtSvc := payment.NewService(paymentsvc.NewRazorpayGateway(conf), enrSvc, conf)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Addr:           conf.Server.Address(),
		Conf:           conf,
		Logger:         logger,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		UserSvc:        usrSvc,
		AuthSvc:        authSvc,
		CourseSvc:      crsSvc,
		EnrollSvc:      enrSvc,
		PaymentSvc:     pmtSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownGracePeriod)
		defer cancel()

		if err = app.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
