// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Server connection configuration, usually populated from an optional
// configuration file with flag and environment values layered on top.
package server

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/hashicorp/hcl"
)

// The current format version. Incremented by one whenever the format changes.
const FormatVersion uint16 = 1

// Supported server drivers.
const (
	DriverMongoDB = "mongodb"
	DriverMySQL   = "mysql"
)

const (
	DefaultHost = "127.0.0.1"
	// Development servers listen on a shifted port by convention.
	DefaultMongoDBPort = 27031
	DefaultMySQLPort   = 3306
	// Bounds connection establishment and server selection, in
	// milliseconds.
	DefaultTimeout = 5000

	DefaultMongoDBAdminUser = "mongo-1"
	DefaultMySQLAdminUser   = "root"
)

func New() (*Config, error) {
	return &Config{FormatVersion: FormatVersion}, nil
}

func NewFromFile(f string) (*Config, error) {
	cfg := &Config{FormatVersion: FormatVersion}

	b, err := ioutil.ReadFile(f)
	if err != nil {
		return cfg, err
	}
	cfg, err = decodeInto(cfg, string(b))
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %s", f, err)
	}
	return cfg, err
}

func NewFromString(s string) (*Config, error) {
	return decodeInto(&Config{FormatVersion: FormatVersion}, s)
}

type Config struct {
	// The internal server configuration format version.
	FormatVersion uint16

	// Selects the server kind, one of "mongodb" or "mysql";
	// optional, defaults to "mongodb".
	Driver string
	Host   string
	Port   int
	// Timeout for connection establishment and server selection,
	// in milliseconds.
	Timeout int
	// Administrator identity with privileges to create other
	// accounts.
	Admin AdminDirective
	MySQL MySQLDirective
}

type AdminDirective struct {
	User string
	// Password of the administrator; required; must be non-empty.
	Password string
}

type MySQLDirective struct {
	// Forces the statement forms for MySQL < 5.7.6 and
	// MariaDB < 10.1.3; autodetected from the server version
	// when left unset.
	UseLegacy bool
}

func (cfg Config) GetDriver() string {
	if cfg.Driver == "" {
		return DriverMongoDB
	}
	return cfg.Driver
}

// Address of the server in host:port form, defaults filled in per
// driver.
func (cfg Config) Addr() string {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Port
	if port == 0 {
		if cfg.GetDriver() == DriverMySQL {
			port = DefaultMySQLPort
		} else {
			port = DefaultMongoDBPort
		}
	}
	return fmt.Sprintf("%s:%d", host, port)
}

func (cfg Config) GetAdminUser() string {
	if cfg.Admin.User != "" {
		return cfg.Admin.User
	}
	if cfg.GetDriver() == DriverMySQL {
		return DefaultMySQLAdminUser
	}
	return DefaultMongoDBAdminUser
}

func (cfg Config) GetTimeout() time.Duration {
	if cfg.Timeout == 0 {
		return DefaultTimeout * time.Millisecond
	}
	return time.Duration(cfg.Timeout) * time.Millisecond
}

// Validates the configuration and looks for typical human errors.
// Must pass before any connection is attempted.
func (cfg Config) Validate() error {
	switch cfg.GetDriver() {
	case DriverMongoDB, DriverMySQL:
		// known
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port out of range: %d", cfg.Port)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %d", cfg.Timeout)
	}
	if cfg.Admin.Password == "" {
		return fmt.Errorf("admin user %s has empty password", cfg.GetAdminUser())
	}
	return nil
}

func decodeInto(cfg *Config, s string) (*Config, error) {
	if err := hcl.Decode(cfg, s); err != nil {
		return cfg, err
	}
	return cfg, nil
}
