// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"fmt"

	"github.com/momeni/libcat/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn represents one dedicated database connection which is taken
// from a Pool. It implements the repo.Conn interface. A Conn may not
// be used concurrently, so use a Pool and take one Conn per goroutine.
type Conn struct {
	*gorm.DB
}

// TxHandler is a handler function which takes a context and an ongoing
// transaction. If handler returns a non-nil error or panics, the
// transaction will be rolled back, otherwise it will be committed.
type TxHandler = repo.TxHandler

// Tx begins a new READ-COMMITTED transaction and calls f with it.
// Locking reads (SELECT ... FOR UPDATE) which are issued in f hold
// their row locks until f returns and the transaction ends.
func (c *Conn) Tx(ctx context.Context, f TxHandler) (err error) {
	tx := c.DB.WithContext(ctx).Begin()
	if err = tx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if err = tx.Rollback().Error; err != nil {
				err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
				return
			}
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			if err2 := tx.Rollback().Error; err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", err)
			return
		}
		if err = tx.Commit().Error; err != nil {
			err = fmt.Errorf("commit: %w", Translate(err))
		}
	}()
	return f(ctx, &Tx{DB: tx})
}

// Exec runs sql with args on c and returns the number of affected rows.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return execute(c.DB.WithContext(ctx), sql, args...)
}

// Query runs sql with args on c. The returned rows must be closed
// before c can be used for another statement.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := c.DB.WithContext(ctx).Raw(sql, args...).Rows()
	return rowsAdapter{rows}, Translate(err)
}

// IsConn method prevents a non-Conn object (such as a Tx) to
// mistakenly implement the Conn interface.
func (c *Conn) IsConn() {
}

// GORM returns the embedded *gorm.DB instance, bound to ctx.
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}

func execute(db *gorm.DB, sql string, args ...any) (int64, error) {
	db = db.Exec(sql, args...)
	if err := db.Error; err != nil {
		return 0, Translate(err)
	}
	return db.RowsAffected, nil
}
