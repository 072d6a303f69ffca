// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestDuplicateUserByCode(t *testing.T) {
	err := mongo.CommandError{Code: 51003, Message: "User \"appuser@appdb\" already exists"}
	if !isDuplicateUser(err) {
		t.Error("code 51003 not classified as duplicate")
	}
}

func TestDuplicateUserWrapped(t *testing.T) {
	err := fmt.Errorf("createUser: %w", mongo.CommandError{Code: 51003})
	if !isDuplicateUser(err) {
		t.Error("wrapped code 51003 not classified as duplicate")
	}
}

func TestOtherCommandErrorIsNotDuplicate(t *testing.T) {
	err := mongo.CommandError{Code: 13, Message: "not authorized on appdb to execute command"}
	if isDuplicateUser(err) {
		t.Error("code 13 classified as duplicate")
	}
}

func TestDuplicateUserByMessageFallback(t *testing.T) {
	err := errors.New("User \"appuser@appdb\" already exists")
	if !isDuplicateUser(err) {
		t.Error("message fallback not classified as duplicate")
	}
	if isDuplicateUser(errors.New("connection refused")) {
		t.Error("unrelated error classified as duplicate")
	}
}
