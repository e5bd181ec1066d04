// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package loansuc contains the loans UseCase which supports the
// borrowing related use cases:
//  1. Lending a book to a borrower (creating a loan),
//  2. Returning a lent book (closing a loan),
//  3. Listing loans with their days remaining and overdue flags.
//
// Lending and returning update a book and a loan in one transaction,
// keeping the book availability status consistent with its loans.
package loansuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/log"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/repo"
)

// These errors are reported (wrapped by cerr errors) when a loan may
// not be created or closed due to the current state of the database.
var (
	ErrBookNotAvailable = errors.New("book not available")
	ErrAlreadyBorrowed  = errors.New("already borrowed, not returned")
	ErrAlreadyReturned  = errors.New("loan already returned")
)

// UseCase represents a loans use case. It holds a database connection
// pool, the books and loans repository instances, and the loans use
// case specific settings.
type UseCase struct {
	pool    repo.Pool
	booksrp repo.Books
	loansrp repo.Loans

	now            func() time.Time
	location       *time.Location
	maxLoanPeriod  time.Duration
	allowDuplicate bool
}

// New instantiates a loans use case.
// Required parameters are passed individually, while optional ones
// are passed as functional options.
func New(
	p repo.Pool, b repo.Books, l repo.Loans, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, booksrp: b, loansrp: l}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.location == nil {
		uc.location = time.UTC
	}
	return uc, nil
}

// Today returns the current calendar date in the configured location.
func (loans *UseCase) Today() time.Time {
	return model.Date(loans.now().In(loans.location))
}

// CreateLoan lends a book to nl.Borrower. The book is found by its
// identifier or title and is locked, so concurrent CreateLoan calls
// for the same book are serialized and only one of them can observe
// it as available. The loan is inserted and the book is marked as
// not available in the same transaction. The created loan is returned
// with its derived fields.
func (loans *UseCase) CreateLoan(
	ctx context.Context, nl *model.NewLoan,
) (*model.LoanView, error) {
	if err := loans.validate(nl); err != nil {
		return nil, cerr.BadRequest(err)
	}
	l := &model.Loan{
		Borrower:   nl.Borrower,
		BorrowedOn: model.Date(nl.BorrowedOn),
		DueOn:      model.Date(nl.DueOn),
		Status:     model.LoanNotReturned,
	}
	err := loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return loans.lend(ctx, tx, nl, l)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("lending book: %w", err)
	}
	log.Info(
		ctx, "book is lent",
		log.Stringer("loan", l.ID),
		log.Stringer("book", l.BookID),
		slog.String("borrower", l.Borrower),
	)
	return l.View(loans.Today()), nil
}

func (loans *UseCase) lend(
	ctx context.Context, tx repo.Tx, nl *model.NewLoan, l *model.Loan,
) error {
	bq := loans.booksrp.Tx(tx)
	lq := loans.loansrp.Tx(tx)
	var b *model.Book
	var err error
	if nl.BookID != uuid.Nil {
		b, err = bq.Lock(ctx, nl.BookID)
	} else {
		b, err = bq.LockByTitle(ctx, nl.BookTitle)
	}
	if err != nil {
		return fmt.Errorf("locking book: %w", err)
	}
	if nl.BookID != uuid.Nil && nl.BookTitle != "" && nl.BookTitle != b.Title {
		return cerr.BadRequest(fmt.Errorf(
			"book %s is titled %q, not %q", b.ID, b.Title, nl.BookTitle,
		))
	}
	if b.Status != model.BookAvailable {
		return cerr.Conflict(ErrBookNotAvailable)
	}
	if !loans.allowDuplicate {
		dup, err := lq.HasOpen(ctx, nl.Borrower, b.ID)
		if err != nil {
			return fmt.Errorf("checking open loans: %w", err)
		}
		if dup {
			return cerr.Conflict(ErrAlreadyBorrowed)
		}
	}
	l.BookID, l.BookTitle = b.ID, b.Title
	if err = lq.Create(ctx, l); err != nil {
		return fmt.Errorf("inserting loan: %w", err)
	}
	if err = bq.SetStatus(ctx, b.ID, model.BookNotAvailable); err != nil {
		return fmt.Errorf("marking book as not available: %w", err)
	}
	return nil
}

func (loans *UseCase) validate(nl *model.NewLoan) error {
	switch {
	case nl.Borrower == "":
		return errors.New("borrower name is required")
	case nl.BookID == uuid.Nil && nl.BookTitle == "":
		return errors.New("book id or book name is required")
	case nl.BorrowedOn.IsZero():
		return errors.New("borrow date is required")
	case nl.DueOn.IsZero():
		return errors.New("due date is required")
	}
	days := model.DaysBetween(nl.BorrowedOn, nl.DueOn)
	if days < 0 {
		return errors.New("due date is before the borrow date")
	}
	if limit := loans.maxLoanPeriod; limit > 0 {
		if period := time.Duration(days) * 24 * time.Hour; period > limit {
			return fmt.Errorf(
				"loan period (%d days) exceeds the maximum (%s)",
				days, limit,
			)
		}
	}
	return nil
}

// ReturnLoan closes the id loan, setting its status to the given one,
// and makes its book available again. Only the LoanReturned status is
// accepted. Returning an already returned loan is rejected with a
// conflict error, so the availability of a book which may be lent to
// someone else in the meantime is not touched.
func (loans *UseCase) ReturnLoan(
	ctx context.Context, id uuid.UUID, s model.LoanStatus,
) error {
	if s != model.LoanReturned {
		return cerr.BadRequest(fmt.Errorf(
			"status must be %q", model.LoanReturned.String(),
		))
	}
	var bookID uuid.UUID
	err := loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			lq := loans.loansrp.Tx(tx)
			l, err := lq.Lock(ctx, id)
			if err != nil {
				return fmt.Errorf("locking loan: %w", err)
			}
			if l.Status == model.LoanReturned {
				return cerr.Conflict(ErrAlreadyReturned)
			}
			if err = lq.SetStatus(ctx, id, s); err != nil {
				return fmt.Errorf("updating loan status: %w", err)
			}
			bookID = l.BookID
			if bookID == uuid.Nil {
				return nil // book was deleted meanwhile
			}
			bq := loans.booksrp.Tx(tx)
			err = bq.SetStatus(ctx, bookID, model.BookAvailable)
			if err != nil {
				return fmt.Errorf("marking book as available: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("returning loan %s: %w", id, err)
	}
	log.Info(
		ctx, "book is returned",
		log.Stringer("loan", id),
		log.Stringer("book", bookID),
	)
	return nil
}

// ListLoans returns all loans with their derived fields, as computed
// for the current calendar date.
func (loans *UseCase) ListLoans(ctx context.Context) ([]*model.LoanView, error) {
	var ll []model.Loan
	err := loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
		ll, err = loans.loansrp.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	return loans.views(ll), nil
}

// ListOverdueLoans returns the open loans which were due before today.
func (loans *UseCase) ListOverdueLoans(
	ctx context.Context,
) ([]*model.LoanView, error) {
	today := loans.Today()
	var ll []model.Loan
	err := loans.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
		ll, err = loans.loansrp.Conn(c).ListOverdue(ctx, today)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing overdue loans: %w", err)
	}
	return loans.views(ll), nil
}

func (loans *UseCase) views(ll []model.Loan) []*model.LoanView {
	today := loans.Today()
	vv := make([]*model.LoanView, 0, len(ll))
	for i := range ll {
		vv = append(vv, ll[i].View(today))
	}
	return vv
}
