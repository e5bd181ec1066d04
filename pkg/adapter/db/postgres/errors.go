// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/libcat/pkg/core/cerr"
)

// PostgreSQL error codes which are reported as client errors.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

// Translate wraps err with a cerr error if it is a PostgreSQL error
// which is caused by the request data rather than the server state,
// so it can be reported with a proper HTTP status code. Other errors
// (including nil) are returned as is.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case UniqueViolation, ForeignKeyViolation:
		return cerr.Conflict(err)
	case CheckViolation:
		return cerr.BadRequest(err)
	default:
		return err
	}
}
