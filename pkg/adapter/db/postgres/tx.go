// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/libcat/pkg/core/repo"
	"gorm.io/gorm"
)

// Tx represents an ongoing database transaction. It implements the
// repo.Tx interface and may not be used concurrently.
//
// The PostgreSQL default READ-COMMITTED isolation level is used, so
// read-modify-write sequences must lock their rows explicitly. See
// https://www.postgresql.org/docs/current/transaction-iso.html#XACT-READ-COMMITTED
type Tx struct {
	*gorm.DB
}

// Exec runs sql with args in tx and returns the number of affected
// rows. Parameters in sql are numbered like $1, $2, etc. and args are
// sent separately, so they are never interpolated into sql.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return execute(tx.DB.WithContext(ctx), sql, args...)
}

// Query runs sql with args in tx. The returned rows must be closed
// before running another statement in the same transaction.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := tx.DB.WithContext(ctx).Raw(sql, args...).Rows()
	return rowsAdapter{rows}, Translate(err)
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB instance, bound to ctx.
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}
