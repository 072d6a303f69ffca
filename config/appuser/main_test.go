// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package appuser

import "testing"

func TestDecodeSetsName(t *testing.T) {
	userfile := `
database "salesdb" {
	user = "salesuser"
	password = "s3cret"
}
`
	cfg, err := NewFromString(userfile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database["salesdb"].Name != "salesdb" {
		t.Error("failed to parse name")
	}
}

func TestDecodeDefaultsUser(t *testing.T) {
	userfile := `
database "salesdb" {
	password = "s3cret"
}
`
	cfg, err := NewFromString(userfile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database["salesdb"].User != "appuser" {
		t.Error("failed to default user")
	}
}

func TestDirective(t *testing.T) {
	userfile := `
database "salesdb" {
	user = "salesuser"
	password = "s3cret"
}
`
	cfg, err := NewFromString(userfile)
	if err != nil {
		t.Fatal(err)
	}
	db, err := cfg.Directive()
	if err != nil {
		t.Fatal(err)
	}
	if db.Name != "salesdb" || db.User != "salesuser" {
		t.Error("directive does not round-trip")
	}
}

func TestDirectiveRefusesMultiple(t *testing.T) {
	userfile := `
database "salesdb" {
	password = "s3cret"
}
database "staffdb" {
	password = "s3cret"
}
`
	cfg, err := NewFromString(userfile)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Directive(); err == nil {
		t.Error("2 databases did not error")
	}
}

func TestValidateRequiresPassword(t *testing.T) {
	userfile := `
database "salesdb" {
	user = "salesuser"
}
`
	cfg, err := NewFromString(userfile)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("empty password did validate")
	}
}
