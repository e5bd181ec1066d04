// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksrp implements the repo.Books interface for the books
// table of a PostgreSQL database. Read queries are generic over the
// postgres.Conn and postgres.Tx types, while writes and locking reads
// are only provided for transactions.
package booksrp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/repo"
)

// Repo represents the books repository instance.
type Repo struct {
}

// New instantiates a books Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn takes a repo.Conn which must be a *postgres.Conn and returns
// the books queryer object which runs on it.
func (books *Repo) Conn(c repo.Conn) repo.BooksConnQueryer {
	return connQueryer{Conn: c.(*postgres.Conn)}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) List(ctx context.Context) ([]model.Book, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) Search(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return Search(ctx, cq.Conn, f)
}

func (cq connQueryer) Featured(ctx context.Context, limit int) ([]model.Book, error) {
	return Featured(ctx, cq.Conn, limit)
}

func (cq connQueryer) Stats(ctx context.Context, today time.Time) (*model.DashboardStats, error) {
	return Stats(ctx, cq.Conn, today)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx takes a repo.Tx which must be a *postgres.Tx and returns the
// books queryer object which runs in that transaction.
func (books *Repo) Tx(tx repo.Tx) repo.BooksTxQueryer {
	return txQueryer{Tx: tx.(*postgres.Tx)}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) List(ctx context.Context) ([]model.Book, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Search(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return Search(ctx, tq.Tx, f)
}

func (tq txQueryer) Featured(ctx context.Context, limit int) ([]model.Book, error) {
	return Featured(ctx, tq.Tx, limit)
}

func (tq txQueryer) Stats(ctx context.Context, today time.Time) (*model.DashboardStats, error) {
	return Stats(ctx, tq.Tx, today)
}

func (tq txQueryer) Create(ctx context.Context, b *model.Book) error {
	return Create(ctx, tq.Tx, b)
}

func (tq txQueryer) Update(ctx context.Context, b *model.Book) error {
	return Update(ctx, tq.Tx, b)
}

func (tq txQueryer) Delete(ctx context.Context, id uuid.UUID) error {
	return Delete(ctx, tq.Tx, id)
}

func (tq txQueryer) Lock(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return Lock(ctx, tq.Tx, id)
}

func (tq txQueryer) LockByTitle(ctx context.Context, title string) (*model.Book, error) {
	return LockByTitle(ctx, tq.Tx, title)
}

func (tq txQueryer) SetStatus(ctx context.Context, id uuid.UUID, s model.BookStatus) error {
	return SetStatus(ctx, tq.Tx, id, s)
}
