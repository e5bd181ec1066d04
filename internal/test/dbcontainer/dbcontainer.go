// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer is an internal helper for the integration test
// suites. It starts a temporary postgres:16 container, connects to it
// with a *postgres.Pool connection pool, and creates the libcat tables
// in its database.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/schema"
	"github.com/momeni/libcat/pkg/core/repo"
	"github.com/stretchr/testify/assert"
)

// New creates and starts up a postgres container and creates the
// schema, including the development sample books when dev is true.
// The DOCKER_HOST environment variable must point to a docker (or
// podman) socket, e.g., unix://$XDG_RUNTIME_DIR/podman/podman.sock.
// Integration tests are skipped in the -short mode.
//
// The ctx is used during the container start up and shutdown, while
// the timeout is only considered during the start up phase. Returned
// dfrs functions must be deferred by the caller, even if ok is false.
func New(ctx context.Context, timeout time.Duration, dev bool, t *testing.T) (
	pg *sqltestutil.PostgresContainer,
	pool *postgres.Pool,
	dfrs []func(),
	ok bool,
) {
	if testing.Short() {
		t.Skip("integration tests need a postgres container")
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(ctx2, "16")
	if ok = assert.NoError(t, err, "failed to set up a test database"); !ok {
		return
	}
	dfrs = append(dfrs, func() {
		err := pg.Shutdown(ctx)
		assert.NoError(t, err, "failed to shutdown test database")
	})
	u := pg.ConnectionString()
	for pool == nil {
		pool, err = postgres.NewPool(ctx2, u)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.SQLState() == "57P03" {
			continue // the database system is starting up
		}
		var netErr net.Error
		if ctx2.Err() == nil && errors.As(err, &netErr) {
			continue // tolerate network errors until a timeout
		}
		if ok = assert.NoError(t, err, "cannot connect to test database"); !ok {
			return
		}
	}
	dfrs = append(dfrs, func() {
		err := pool.Close()
		assert.NoError(t, err, "failed to close the connections pool")
	})
	err = pool.Conn(ctx2, func(ctx context.Context, c repo.Conn) error {
		return schema.Init(ctx, c, dev, "")
	})
	ok = assert.NoError(t, err, "cannot create the schema")
	return
}

// Truncate removes all books and loans, so each test can start from
// an empty database.
func Truncate(ctx context.Context, pool *postgres.Pool) error {
	return pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, "TRUNCATE loans, books")
		return err
	})
}
