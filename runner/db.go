// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/atelierdisko/dbuserctl/config/appuser"
	"github.com/atelierdisko/dbuserctl/config/server"
	"github.com/atelierdisko/dbuserctl/system"
)

func NewDBRunner(s *server.Config, db appuser.DatabaseDirective, sys UserAdmin) *DBRunner {
	return &DBRunner{s: s, db: db, sys: sys}
}

// Ensures the application user is available on the server with
// read/write access to its database.
type DBRunner struct {
	s   *server.Config
	db  appuser.DatabaseDirective
	sys UserAdmin
}

// Runs the single provisioning step. A user that is already present
// is benign, everything else that goes wrong is carried inside the
// outcome instead of failing the run.
func (r DBRunner) Provision(ctx context.Context) Outcome {
	log.Printf("provisioning user '%s' on database '%s' at %s", r.db.User, r.db.Name, r.s.Addr())

	err := r.sys.CreateUser(ctx, r.db.User, r.db.Password, r.db.Name)
	switch {
	case err == nil:
		return Outcome{Kind: UserCreated, User: r.db.User, Database: r.db.Name}
	case errors.Is(err, system.ErrUserExists):
		return Outcome{Kind: UserExisted, User: r.db.User, Database: r.db.Name}
	}
	return Outcome{Kind: ProvisionFailed, User: r.db.User, Database: r.db.Name, Err: err}
}

type OutcomeKind int

const (
	UserCreated OutcomeKind = iota
	UserExisted
	ProvisionFailed
)

// The result of a provisioning run, printable as a single human
// readable line.
type Outcome struct {
	Kind     OutcomeKind
	User     string
	Database string
	Err      error
}

func (o Outcome) String() string {
	switch o.Kind {
	case UserCreated:
		return fmt.Sprintf("User '%s' created with readWrite role on database '%s'.", o.User, o.Database)
	case UserExisted:
		return fmt.Sprintf("User '%s' already exists.", o.User)
	}
	return fmt.Sprintf("Failed to create user: %s", o.Err)
}
