// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package server

import (
	"testing"
	"time"
)

func TestDecodeRoot(t *testing.T) {
	conf := `
driver = "mysql"
host = "db.example.org"
port = 3307
`
	cfg, err := NewFromString(conf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Driver != "mysql" {
		t.Error("Driver is not mysql")
	}
	if cfg.Addr() != "db.example.org:3307" {
		t.Errorf("unexpected address: %s", cfg.Addr())
	}
}

func TestDecodeAdmin(t *testing.T) {
	conf := `
admin {
	user = "op"
	password = "s3cret"
}
`
	cfg, err := NewFromString(conf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Admin.User != "op" || cfg.Admin.Password != "s3cret" {
		t.Error("failed to parse admin directive")
	}
}

func TestDecodeMySQLDirective(t *testing.T) {
	conf := `
mysql {
	useLegacy = true
}
`
	cfg, err := NewFromString(conf)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.MySQL.UseLegacy {
		t.Error("failed to parse useLegacy")
	}
}

func TestDriverDefaults(t *testing.T) {
	cfg, err := NewFromString(``)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GetDriver() != DriverMongoDB {
		t.Errorf("default driver is not mongodb: %s", cfg.GetDriver())
	}
	if cfg.Addr() != "127.0.0.1:27031" {
		t.Errorf("unexpected default address: %s", cfg.Addr())
	}
	if cfg.GetAdminUser() != DefaultMongoDBAdminUser {
		t.Errorf("unexpected default admin user: %s", cfg.GetAdminUser())
	}
	if cfg.GetTimeout() != 5*time.Second {
		t.Errorf("unexpected default timeout: %s", cfg.GetTimeout())
	}

	cfg.Driver = DriverMySQL
	if cfg.Addr() != "127.0.0.1:3306" {
		t.Errorf("unexpected mysql default address: %s", cfg.Addr())
	}
	if cfg.GetAdminUser() != DefaultMySQLAdminUser {
		t.Errorf("unexpected mysql default admin user: %s", cfg.GetAdminUser())
	}
}

func TestValidateRequiresAdminPassword(t *testing.T) {
	cfg, err := NewFromString(`host = "127.0.0.1"`)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("empty admin password did validate")
	}

	cfg.Admin.Password = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("non-empty admin password did not validate: %s", err)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg, err := NewFromString(`driver = "postgres"`)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Admin.Password = "s3cret"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown driver did validate")
	}
}
