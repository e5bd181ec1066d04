// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema creates the books and loans tables, their indices,
// and optionally fills the books table with sample development data.
// All statements are idempotent, so Init may run on an initialized
// database again.
package schema

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/libcat/pkg/core/repo"
)

//go:embed schema.sql
var tablesSQL string

//go:embed dev.sql
var devSQL string

// Init creates the tables in one transaction. If dev is true, sample
// books are inserted too. If grantee is not empty, that role is
// granted the privileges which are required by the web server.
func Init(ctx context.Context, c repo.Conn, dev bool, grantee string) error {
	return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		if _, err := tx.Exec(ctx, tablesSQL); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
		if grantee != "" {
			role := pgx.Identifier{grantee}.Sanitize()
			q := "GRANT SELECT, INSERT, UPDATE, DELETE ON books, loans TO " + role
			if _, err := tx.Exec(ctx, q); err != nil {
				return fmt.Errorf("granting privileges to %s: %w", role, err)
			}
		}
		if dev {
			if _, err := tx.Exec(ctx, devSQL); err != nil {
				return fmt.Errorf("inserting dev books: %w", err)
			}
		}
		return nil
	})
}

const sizesSQL = `SELECT 'books', count(*) FROM books
UNION ALL
SELECT 'loans', count(*) FROM loans`

// ErrUnexpectedRow indicates that a row of the table sizes query has
// unexpected column types.
var ErrUnexpectedRow = errors.New("unexpected table sizes row")

// Sizes returns the number of rows of the books and loans tables,
// keyed by their names.
func Sizes(ctx context.Context, q repo.Queryer) (map[string]int64, error) {
	rows, err := q.Query(ctx, sizesSQL)
	if err != nil {
		return nil, fmt.Errorf("querying table sizes: %w", err)
	}
	defer rows.Close()
	sizes := make(map[string]int64, 2)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading table sizes: %w", err)
		}
		if len(vals) != 2 {
			return nil, fmt.Errorf("%w: %d columns", ErrUnexpectedRow, len(vals))
		}
		name, ok1 := vals[0].(string)
		n, ok2 := vals[1].(int64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: %T, %T", ErrUnexpectedRow, vals[0], vals[1])
		}
		sizes[name] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table sizes: %w", err)
	}
	return sizes, nil
}
