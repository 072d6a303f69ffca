// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The provisioning command. Connects to a database server as
// administrator and ensures one application user exists with
// read/write access to one database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/atelierdisko/dbuserctl/config/appuser"
	"github.com/atelierdisko/dbuserctl/config/server"
	"github.com/atelierdisko/dbuserctl/runner"
	"github.com/atelierdisko/dbuserctl/system"
	"github.com/coreos/go-systemd/v22/journal"
	"github.com/jawher/mow.cli"
)

var (
	App = cli.App("dbuserctl", "dbuserctl provisions application database users")

	// Set via ldflags.
	Version string
)

func main() {
	log.SetFlags(0) // disable prefix, we are invoked directly.

	// Deployment automation runs us as a transient unit; keep the
	// progress log readable in the journal there.
	if os.Getenv("INVOCATION_ID") != "" && journal.Enabled() {
		log.SetOutput(journalWriter{})
	}

	App.Version("v version", "dbuserctl "+Version)

	config := App.String(cli.StringOpt{
		Name:   "config",
		Desc:   "server configuration file",
		EnvVar: "DBUSERCTL_CONFIG",
	})
	driver := App.String(cli.StringOpt{
		Name:   "driver",
		Desc:   "server driver, either mongodb or mysql",
		EnvVar: "DBUSERCTL_DRIVER",
	})
	host := App.String(cli.StringOpt{
		Name:   "host",
		Desc:   "server host",
		EnvVar: "DBUSERCTL_HOST MONGO_HOST",
	})
	port := App.Int(cli.IntOpt{
		Name:   "port",
		Desc:   "server port",
		EnvVar: "DBUSERCTL_PORT MONGO_PORT",
	})
	timeout := App.Int(cli.IntOpt{
		Name:   "timeout",
		Desc:   "connect/server selection timeout in milliseconds",
		EnvVar: "DBUSERCTL_TIMEOUT",
	})
	adminUser := App.String(cli.StringOpt{
		Name:   "admin-user",
		Desc:   "administrator identity",
		EnvVar: "DBUSERCTL_ADMIN_USER MONGO_ADMIN_USER",
	})
	adminPassword := App.String(cli.StringOpt{
		Name:   "admin-password",
		Desc:   "administrator password",
		EnvVar: "DBUSERCTL_ADMIN_PASSWORD MONGO_ADMIN_PASSWORD",
	})
	file := App.String(cli.StringOpt{
		Name: "file",
		Desc: "path to a Userfile",
	})
	database := App.String(cli.StringOpt{
		Name:   "database",
		Desc:   "database to grant access to",
		EnvVar: "DBUSERCTL_DB MONGO_DB",
	})
	user := App.String(cli.StringOpt{
		Name:   "user",
		Desc:   "account to create",
		EnvVar: "DBUSERCTL_USER APP_DB_USER",
	})
	password := App.String(cli.StringOpt{
		Name:   "password",
		Desc:   "password for the account",
		EnvVar: "DBUSERCTL_PASSWORD APP_DB_PASSWORD",
	})

	App.Action = func() {
		var sCfg *server.Config
		var err error

		if *config != "" {
			if sCfg, err = server.NewFromFile(*config); err != nil {
				log.Fatal(err)
			}
			log.Printf("loaded configuration from %s", *config)
		} else {
			sCfg, _ = server.New()
		}
		if *driver != "" {
			sCfg.Driver = *driver
		}
		if *host != "" {
			sCfg.Host = *host
		}
		if *port != 0 {
			sCfg.Port = *port
		}
		if *timeout != 0 {
			sCfg.Timeout = *timeout
		}
		if *adminUser != "" {
			sCfg.Admin.User = *adminUser
		}
		if *adminPassword != "" {
			sCfg.Admin.Password = *adminPassword
		}

		var uCfg *appuser.Config
		if *file != "" {
			if uCfg, err = appuser.NewFromFile(*file); err != nil {
				log.Fatal(err)
			}
		} else {
			name := *database
			if name == "" {
				name = appuser.DefaultDatabase
			}
			uCfg = &appuser.Config{
				Database: map[string]appuser.DatabaseDirective{
					name: {Name: name},
				},
			}
		}
		db, err := uCfg.Directive()
		if err != nil {
			log.Fatal(err)
		}
		if *database != "" {
			db.Name = *database
		}
		if *user != "" {
			db.User = *user
		}
		if db.User == "" {
			db.User = appuser.DefaultUser
		}
		if *password != "" {
			db.Password = *password
		}
		uCfg.Database = map[string]appuser.DatabaseDirective{db.Name: db}

		// Both secrets must be present before we touch the network.
		if err := sCfg.Validate(); err != nil {
			log.Fatal(err)
		}
		if err := uCfg.Validate(); err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()

		var sys runner.UserAdmin
		switch sCfg.GetDriver() {
		case server.DriverMySQL:
			conn, err := system.DialMySQL(ctx, sCfg)
			if err != nil {
				log.Fatal(err)
			}
			defer conn.Close()
			sys = system.NewMySQL(sCfg, conn)
		default:
			conn, err := system.DialMongoDB(ctx, sCfg)
			if err != nil {
				log.Fatal(err)
			}
			defer conn.Disconnect(ctx)
			sys = system.NewMongoDB(sCfg, conn)
		}

		fmt.Println(runner.NewDBRunner(sCfg, db, sys).Provision(ctx))
	}

	App.Run(os.Args)
}

// Forwards a log line to the journal, stripped of its trailing
// newline.
type journalWriter struct{}

func (journalWriter) Write(p []byte) (int, error) {
	if err := journal.Send(strings.TrimSuffix(string(p), "\n"), journal.PriInfo, nil); err != nil {
		return 0, err
	}
	return len(p), nil
}
