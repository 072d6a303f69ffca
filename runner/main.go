// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Runners command a system to fulfill the database needs of an
// application and classify what happened into an outcome.
package runner

import "context"

// UserAdmin is the single administrative capability a system has to
// provide: creating a restricted account scoped to one database.
type UserAdmin interface {
	// Creates the named account with read/write access to the
	// database. Reports system.ErrUserExists for accounts that are
	// already present, leaving them untouched.
	CreateUser(ctx context.Context, user string, password string, database string) error
}
