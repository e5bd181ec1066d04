// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrp_test

import (
	"testing"

	"github.com/momeni/libcat/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectBooks = `SELECT "bid", "title", "author", "subject", "picture", "status" FROM "books"`

func TestSearchSQL(t *testing.T) {
	cases := []struct {
		name string
		f    model.BookFilter
		sql  string
		args []any
	}{
		{
			name: "no filter",
			sql:  selectBooks + ` ORDER BY "title" ASC`,
		},
		{
			name: "query only",
			f:    model.BookFilter{Query: "dune"},
			sql: selectBooks + ` WHERE (("title" ILIKE $1) OR ("author" ILIKE $2)` +
				` OR ("subject" ILIKE $3)) ORDER BY "title" ASC`,
			args: []any{"%dune%", "%dune%", "%dune%"},
		},
		{
			name: "escaped wildcards",
			f:    model.BookFilter{Query: "100%_"},
			sql: selectBooks + ` WHERE (("title" ILIKE $1) OR ("author" ILIKE $2)` +
				` OR ("subject" ILIKE $3)) ORDER BY "title" ASC`,
			args: []any{`%100\%\_%`, `%100\%\_%`, `%100\%\_%`},
		},
		{
			name: "subject and status",
			f: model.BookFilter{
				Subject: "History", Status: model.BookNotAvailable,
			},
			sql: selectBooks + ` WHERE (("subject" = $1) AND ("status" = $2))` +
				` ORDER BY "title" ASC`,
			args: []any{"History", "Not Available"},
		},
	}
	for _, c := range cases {
		sql, args, err := booksrp.SearchSQL(c.f)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.sql, sql, c.name)
		if len(c.args) == 0 {
			assert.Empty(t, args, c.name)
			continue
		}
		assert.Equal(t, c.args, args, c.name)
	}
}
