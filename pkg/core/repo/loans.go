// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/core/model"
)

// LoansConnQueryer holds the loans queries which may run on a
// connection (outside of an explicit transaction).
type LoansConnQueryer interface {
	LoansQueryer
}

// LoansTxQueryer holds the loans queries which need a transaction.
type LoansTxQueryer interface {
	LoansQueryer

	// Create inserts l with a fresh identifier, storing it in l.ID.
	// Inserting a second open loan for one book causes cerr.Conflict.
	Create(ctx context.Context, l *model.Loan) error

	// Lock fetches the id loan using a locking read.
	// A missing loan causes a cerr.NotFound.
	Lock(ctx context.Context, id uuid.UUID) (*model.Loan, error)

	// SetStatus updates the status of the id loan.
	SetStatus(ctx context.Context, id uuid.UUID, s model.LoanStatus) error

	// HasOpen reports if the borrower has an open loan for the bookID
	// book. An empty borrower matches any borrower.
	HasOpen(ctx context.Context, borrower string, bookID uuid.UUID) (bool, error)
}

// LoansQueryer holds the read only loans queries.
type LoansQueryer interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Loan, error)

	// List returns all loans, most recent borrow dates first.
	List(ctx context.Context) ([]model.Loan, error)

	// ListOverdue returns open loans which are due before today.
	ListOverdue(ctx context.Context, today time.Time) ([]model.Loan, error)
}

// Loans is the loans repository. It adapts connections and
// transactions into their relevant loans queryer objects.
type Loans interface {
	Conn(Conn) LoansConnQueryer
	Tx(Tx) LoansTxQueryer
}
