// Copyright 2016 Atelier Disko. All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Systems speak to a concrete database server and issue the
// administrative commands on behalf of a runner.
package system

import "errors"

// Reported by CreateUser when the account is already present on the
// server. Detected through the structured error code of the server
// response wherever one exists.
var ErrUserExists = errors.New("user already exists")
