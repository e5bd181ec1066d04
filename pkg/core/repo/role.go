// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a string specifying a database connection role. Each role
// has a set of granted privileges which indicates which operations
// may be performed after using it for connecting to a database.
// Passwords of roles are not kept in the configuration file, but in
// a .pgpass file as indicated by the configuration.
type Role string

// These constants specify the expected database roles. Both roles
// must exist beforehand. The AdminRole must be able to create tables
// in the configured database and grant privileges on them.
const (
	// AdminRole is used by the "db init" command in order to create
	// the books and loans tables and grant their DML privileges to
	// the NormalRole.
	AdminRole Role = "admin"

	// NormalRole is a normal (unprivileged) role which is used by the
	// web server for all queries and transactions.
	NormalRole Role = "libcat"
)
