package main

import (
	"log"
	"os"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/user"
	"github.com/trezcool/mtihani/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	workDir, err := os.Getwd()
	errAndDie(err)

	conf, err := core.NewConfig(workDir)
	errAndDie(err)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db,
		usrSvc:   user.NewService(database.NewUserRepository(db)),
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
