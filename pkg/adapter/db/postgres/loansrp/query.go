// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errLoanNotFound = errors.New("loan not found")

type gLoan struct {
	LID        uuid.UUID  `gorm:"primaryKey;type:uuid;column:lid"`
	Borrower   string
	BookID     *uuid.UUID `gorm:"type:uuid"` // NULL after the book deletion
	Title      string
	BorrowedOn time.Time `gorm:"type:date"`
	DueOn      time.Time `gorm:"type:date"`
	Status     string
}

func (gl *gLoan) TableName() string {
	return "loans"
}

func (gl *gLoan) Model() (*model.Loan, error) {
	s, err := model.ParseLoanStatus(gl.Status)
	if err != nil {
		return nil, fmt.Errorf("loan %s status %q: %w", gl.LID, gl.Status, err)
	}
	l := &model.Loan{
		ID:         gl.LID,
		Borrower:   gl.Borrower,
		BookTitle:  gl.Title,
		BorrowedOn: model.Date(gl.BorrowedOn),
		DueOn:      model.Date(gl.DueOn),
		Status:     s,
	}
	if gl.BookID != nil {
		l.BookID = *gl.BookID
	}
	return l, nil
}

func models(gg []gLoan) ([]model.Loan, error) {
	ll := make([]model.Loan, 0, len(gg))
	for i := range gg {
		l, err := gg[i].Model()
		if err != nil {
			return nil, err
		}
		ll = append(ll, *l)
	}
	return ll, nil
}

func first(gdb *gorm.DB) (*model.Loan, error) {
	var gl gLoan
	err := gdb.Take(&gl).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, cerr.NotFound(errLoanNotFound)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gl.Model()
}

// Get finds the id loan.
func Get[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) (*model.Loan, error) {
	return first(q.GORM(ctx).Where("lid = ?", id))
}

func find(gdb *gorm.DB) ([]model.Loan, error) {
	var gg []gLoan
	err := gdb.Order("borrowed_on DESC").Order("title").Find(&gg).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gg)
}

// List returns all loans, most recent borrow dates first.
func List[Q postgres.Queryer](ctx context.Context, q Q) ([]model.Loan, error) {
	return find(q.GORM(ctx))
}

// ListOverdue returns the open loans which are due before today.
func ListOverdue[Q postgres.Queryer](ctx context.Context, q Q, today time.Time) ([]model.Loan, error) {
	return find(q.GORM(ctx).Where(
		"status = ? AND due_on < ?",
		model.LoanNotReturned.String(), today.Format(model.DateLayout),
	))
}

const insertSQL = `INSERT INTO loans
 (lid, borrower, book_id, title, borrowed_on, due_on, status)
 VALUES ($1, $2, $3, $4, $5::date, $6::date, $7)`

// Create inserts l with a fresh identifier. Dates are sent as text,
// so the session time zone cannot shift them.
func Create(ctx context.Context, tx *postgres.Tx, l *model.Loan) error {
	id := uuid.New()
	_, err := tx.Exec(
		ctx, insertSQL,
		id, l.Borrower, l.BookID, l.BookTitle,
		l.BorrowedOn.Format(model.DateLayout),
		l.DueOn.Format(model.DateLayout),
		l.Status.String(),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	l.ID = id
	return nil
}

// Lock fetches the id loan with SELECT ... FOR UPDATE.
func Lock(ctx context.Context, tx *postgres.Tx, id uuid.UUID) (*model.Loan, error) {
	return first(tx.GORM(ctx).Clauses(
		clause.Locking{Strength: "UPDATE"},
	).Where("lid = ?", id))
}

// SetStatus updates the status of the id loan.
func SetStatus(ctx context.Context, tx *postgres.Tx, id uuid.UUID, s model.LoanStatus) error {
	gdb := tx.GORM(ctx).Model(&gLoan{}).Where("lid = ?", id).Update(
		"status", s.String(),
	)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("update: %w", postgres.Translate(err))
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(errLoanNotFound)
	}
	return nil
}

// HasOpen reports if borrower has an open loan for the bookID book.
// An empty borrower matches all borrowers.
func HasOpen(ctx context.Context, tx *postgres.Tx, borrower string, bookID uuid.UUID) (bool, error) {
	gdb := tx.GORM(ctx).Model(&gLoan{}).Where(
		"book_id = ? AND status = ?", bookID, model.LoanNotReturned.String(),
	)
	if borrower != "" {
		gdb = gdb.Where("borrower = ?", borrower)
	}
	var n int64
	if err := gdb.Count(&n).Error; err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return n > 0, nil
}
