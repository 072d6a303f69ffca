// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Defines the configuration structure of an application user,
// usually populated from contents of a Userfile.
package appuser

import (
	"fmt"
	"io/ioutil"

	"github.com/hashicorp/hcl"
)

const (
	DefaultDatabase = "appdb"
	DefaultUser     = "appuser"
)

func New() (*Config, error) {
	return &Config{}, nil
}

// Assumes f is a Userfile.
func NewFromFile(f string) (*Config, error) {
	cfg := &Config{}

	b, err := ioutil.ReadFile(f)
	if err != nil {
		return cfg, err
	}
	cfg, err = decodeInto(cfg, string(b))
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %s", f, err)
	}
	return cfg, nil
}

func NewFromString(s string) (*Config, error) {
	return decodeInto(&Config{}, s)
}

// A Userfile declares the database account an application needs. It
// holds a single database block:
//
//	database "appdb" {
//		user = "appuser"
//		password = "s3cret"
//	}
type Config struct {
	// Databases keyed by name. Exactly one may be given per run.
	Database map[string]DatabaseDirective
}

type DatabaseDirective struct {
	// Database name the account is scoped to; from the block key;
	// defaults to "appdb".
	Name string
	// Account to create; defaults to "appuser".
	User string
	// Password to access the database; required; must be non-empty.
	Password string
}

// The single database directive of the configuration. One account on
// one database per invocation, anything else is refused.
func (cfg Config) Directive() (DatabaseDirective, error) {
	if len(cfg.Database) != 1 {
		return DatabaseDirective{}, fmt.Errorf("need exactly 1 database, got %d", len(cfg.Database))
	}
	for _, db := range cfg.Database {
		return db, nil
	}
	return DatabaseDirective{}, nil // unreachable
}

// Validates several aspects and looks for typical human errors. Users
// should for security reasons not have an empty password (not even for
// dev contexts).
func (cfg Config) Validate() error {
	if len(cfg.Database) != 1 {
		return fmt.Errorf("need exactly 1 database, got %d", len(cfg.Database))
	}
	for _, db := range cfg.Database {
		if db.Name == "" {
			return fmt.Errorf("found empty database name")
		}
		if db.User == "" {
			return fmt.Errorf("found empty user for database: %s", db.Name)
		}
		if db.Password == "" {
			return fmt.Errorf("user %s has empty password for database: %s", db.User, db.Name)
		}
	}
	return nil
}

func decodeInto(cfg *Config, s string) (*Config, error) {
	if err := hcl.Decode(cfg, s); err != nil {
		return cfg, err
	}

	// key is Name
	for k, _ := range cfg.Database {
		e := cfg.Database[k]
		e.Name = k

		if e.User == "" {
			e.User = DefaultUser
		}
		cfg.Database[k] = e
	}
	return cfg, nil
}
