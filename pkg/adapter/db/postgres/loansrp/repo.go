// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansrp implements the repo.Loans interface for the loans
// table of a PostgreSQL database.
package loansrp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/repo"
)

// Repo represents the loans repository instance.
type Repo struct {
}

// New instantiates a loans Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (loans *Repo) Conn(c repo.Conn) repo.LoansConnQueryer {
	return connQueryer{Conn: c.(*postgres.Conn)}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) List(ctx context.Context) ([]model.Loan, error) {
	return List(ctx, cq.Conn)
}

func (cq connQueryer) ListOverdue(ctx context.Context, today time.Time) ([]model.Loan, error) {
	return ListOverdue(ctx, cq.Conn, today)
}

type txQueryer struct {
	*postgres.Tx
}

func (loans *Repo) Tx(tx repo.Tx) repo.LoansTxQueryer {
	return txQueryer{Tx: tx.(*postgres.Tx)}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) List(ctx context.Context) ([]model.Loan, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) ListOverdue(ctx context.Context, today time.Time) ([]model.Loan, error) {
	return ListOverdue(ctx, tq.Tx, today)
}

func (tq txQueryer) Create(ctx context.Context, l *model.Loan) error {
	return Create(ctx, tq.Tx, l)
}

func (tq txQueryer) Lock(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return Lock(ctx, tq.Tx, id)
}

func (tq txQueryer) SetStatus(ctx context.Context, id uuid.UUID, s model.LoanStatus) error {
	return SetStatus(ctx, tq.Tx, id, s)
}

func (tq txQueryer) HasOpen(ctx context.Context, borrower string, bookID uuid.UUID) (bool, error) {
	return HasOpen(ctx, tq.Tx, borrower, bookID)
}
