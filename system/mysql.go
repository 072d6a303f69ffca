// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/atelierdisko/dbuserctl/config/server"
	"github.com/coreos/go-semver/semver"
	"github.com/go-sql-driver/mysql"
)

// The minimum set of database level privileges for general
// application usage (non-administrative tasks).
const DBPrivs = "DELETE,INSERT,SELECT,UPDATE"

// ER_CANNOT_USER, returned for CREATE USER on an existing account.
const errCannotUser = 1396

// Opens a connection to the server, authenticating as the
// administrator. Dial and exchange are bounded by the configured
// timeout.
func DialMySQL(ctx context.Context, s *server.Config) (*sql.DB, error) {
	dsn := mysql.NewConfig()
	dsn.User = s.GetAdminUser()
	dsn.Passwd = s.Admin.Password
	dsn.Net = "tcp"
	dsn.Addr = s.Addr()
	dsn.Timeout = s.GetTimeout()
	dsn.ReadTimeout = s.GetTimeout()
	dsn.WriteTimeout = s.GetTimeout()

	conn, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach MySQL at %s: %s", s.Addr(), err)
	}
	return conn, nil
}

func NewMySQL(s *server.Config, conn *sql.DB) *MySQL {
	return &MySQL{s: s, conn: conn}
}

type MySQL struct {
	s    *server.Config
	conn *sql.DB
	// no need for mutex: all actions are atomic, there is exactly
	// one caller per run
	dirty bool
}

func (sys *MySQL) HasUser(ctx context.Context, user string) (bool, error) {
	stmt := `SELECT COUNT(*) FROM mysql.user WHERE User = ?`

	log.Printf("MySQL is checking for user '%s'", user)
	var count int
	if err := sys.conn.QueryRowContext(ctx, stmt, user).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Creates the user and grants read/write on the database. Reports
// ErrUserExists for accounts that are already present, leaving them
// untouched.
func (sys *MySQL) CreateUser(ctx context.Context, user string, password string, database string) error {
	hasUser, err := sys.HasUser(ctx, user)
	if err != nil {
		return err
	}
	if hasUser {
		return ErrUserExists
	}

	legacy := sys.s.MySQL.UseLegacy
	if !legacy {
		raw, err := sys.serverVersion(ctx)
		if err != nil {
			return err
		}
		if legacy, err = useLegacyStatements(raw); err != nil {
			return err
		}
	}

	log.Printf("MySQL is creating user '%s'", user)
	var stmt string
	if legacy {
		stmt = fmt.Sprintf("CREATE USER '%s'@'%%' IDENTIFIED BY '%s'", user, password)
	} else {
		stmt = fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", user, password)
	}
	if _, err := sys.conn.ExecContext(ctx, stmt); err != nil {
		if isDuplicateCreate(err) {
			return ErrUserExists
		}
		return err
	}
	sys.dirty = true

	if err := sys.grant(ctx, user, database); err != nil {
		return err
	}
	return sys.ReloadIfDirty(ctx)
}

// Grants each of the read/write privileges to the user on database
// level.
func (sys *MySQL) grant(ctx context.Context, user string, database string) error {
	for _, priv := range strings.Split(DBPrivs, ",") {
		log.Printf("MySQL is granting user '%s' privilege %s on %s", user, priv, database)

		stmt := fmt.Sprintf("GRANT %s ON %s.* TO '%s'@'%%'", priv, database, user)
		if _, err := sys.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
		sys.dirty = true
	}
	return nil
}

func (sys *MySQL) ReloadIfDirty(ctx context.Context) error {
	if !sys.dirty {
		return nil
	}
	log.Printf("MySQL is reloading")

	if _, err := sys.conn.ExecContext(ctx, "FLUSH PRIVILEGES"); err != nil {
		return fmt.Errorf("MySQL left in dirty state")
	}
	sys.dirty = false
	return nil
}

func (sys *MySQL) serverVersion(ctx context.Context) (string, error) {
	var v string
	if err := sys.conn.QueryRowContext(ctx, "SELECT VERSION()").Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

func isDuplicateCreate(err error) bool {
	var merr *mysql.MySQLError
	return errors.As(err, &merr) && merr.Number == errCannotUser
}

// MySQL < 5.7.6 and MariaDB < 10.1.3 do not support IF NOT EXISTS
// and need the legacy statement forms.
func useLegacyStatements(raw string) (bool, error) {
	base := raw
	if i := strings.IndexByte(raw, '-'); i != -1 {
		base = raw[:i]
	}
	v, err := semver.NewVersion(base)
	if err != nil {
		return false, fmt.Errorf("failed to parse server version %q: %s", raw, err)
	}

	boundary := semver.New("5.7.6")
	if strings.Contains(raw, "MariaDB") {
		boundary = semver.New("10.1.3")
	}
	return v.LessThan(*boundary), nil
}
