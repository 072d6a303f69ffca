// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/atelierdisko/dbuserctl/config/server"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server code returned by createUser for an existing account.
const codeUserExists = 51003

// Opens a direct connection to the server, authenticating as the
// administrator against the admin database. Dial and server selection
// are bounded by the configured timeout, an unreachable server fails
// here instead of hanging.
func DialMongoDB(ctx context.Context, s *server.Config) (*mongo.Client, error) {
	opts := options.Client().
		SetHosts([]string{s.Addr()}).
		SetDirect(true).
		SetAuth(options.Credential{
			AuthSource: "admin",
			Username:   s.GetAdminUser(),
			Password:   s.Admin.Password,
		}).
		SetConnectTimeout(s.GetTimeout()).
		SetServerSelectionTimeout(s.GetTimeout())

	conn, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx, readpref.Primary()); err != nil {
		conn.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach MongoDB at %s: %s", s.Addr(), err)
	}
	return conn, nil
}

func NewMongoDB(s *server.Config, conn *mongo.Client) *MongoDB {
	return &MongoDB{s: s, conn: conn}
}

type MongoDB struct {
	s    *server.Config
	conn *mongo.Client
}

// Creates the user on the given database with a single readWrite role
// scoped to that database. Reports ErrUserExists for accounts that are
// already present, leaving them untouched.
func (sys MongoDB) CreateUser(ctx context.Context, user string, password string, database string) error {
	log.Printf("MongoDB is creating user '%s' on database '%s'", user, database)

	cmd := bson.D{
		{Key: "createUser", Value: user},
		{Key: "pwd", Value: password},
		{Key: "roles", Value: bson.A{
			bson.D{
				{Key: "role", Value: "readWrite"},
				{Key: "db", Value: database},
			},
		}},
	}
	if err := sys.conn.Database(database).RunCommand(ctx, cmd).Err(); err != nil {
		if isDuplicateUser(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func isDuplicateUser(err error) bool {
	var cerr mongo.CommandError
	if errors.As(err, &cerr) {
		return cerr.Code == codeUserExists
	}
	// Older servers do not always surface a structured code.
	return strings.Contains(err.Error(), "already exists")
}
