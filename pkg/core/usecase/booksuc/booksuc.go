// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package booksuc contains the books UseCase which supports browsing
// the catalog (search, featured books, book details), maintaining the
// inventory by the administrators, and computing the dashboard stats.
package booksuc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/log"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/repo"
)

// ErrBookIsLent is reported (wrapped by cerr.Conflict) when deleting
// a book which has an open loan.
var ErrBookIsLent = errors.New("book is lent out and not returned")

// UseCase represents a books use case.
type UseCase struct {
	pool    repo.Pool
	booksrp repo.Books
	loansrp repo.Loans

	featuredCount int
	now           func() time.Time
	location      *time.Location
}

// New instantiates a books use case. The loans repository is needed
// because a book may not be deleted while it is lent out.
func New(
	p repo.Pool, b repo.Books, l repo.Loans, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, booksrp: b, loansrp: l}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.featuredCount == 0 {
		uc.featuredCount = 6
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.location == nil {
		uc.location = time.UTC
	}
	return uc, nil
}

// Search finds books matching the f filter, ordered by their titles.
func (books *UseCase) Search(
	ctx context.Context, f model.BookFilter,
) (bb []model.Book, err error) {
	if f.Status != model.BookStatusInvalid {
		if err = f.Status.Validate(); err != nil {
			return nil, cerr.BadRequest(err)
		}
	}
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bb, err = books.booksrp.Conn(c).Search(ctx, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("searching books: %w", err)
	}
	return bb, nil
}

// Featured returns a few randomly chosen books for the home page.
func (books *UseCase) Featured(ctx context.Context) (bb []model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bb, err = books.booksrp.Conn(c).Featured(ctx, books.featuredCount)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching featured books: %w", err)
	}
	return bb, nil
}

// Get returns the id book or a cerr.NotFound error.
func (books *UseCase) Get(ctx context.Context, id uuid.UUID) (b *model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		b, err = books.booksrp.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching book %s: %w", id, err)
	}
	return b, nil
}

// List returns all books, ordered by their titles.
func (books *UseCase) List(ctx context.Context) (bb []model.Book, err error) {
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		bb, err = books.booksrp.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return bb, nil
}

// Add inserts b as a new available book and fills its ID field.
// Books titles must be unique, so loans may refer to them by title.
func (books *UseCase) Add(ctx context.Context, b *model.Book) error {
	if err := validate(b); err != nil {
		return cerr.BadRequest(err)
	}
	b.Status = model.BookAvailable
	err := books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return books.booksrp.Tx(tx).Create(ctx, b)
		})
	})
	if err != nil {
		return fmt.Errorf("adding book: %w", err)
	}
	log.Info(ctx, "book is added", log.Stringer("book", b.ID))
	return nil
}

// Update replaces the descriptive fields of the b.ID book. The status
// of the book is managed by the loans use case and is not updated.
// The updated book (having its actual status) is stored in b.
func (books *UseCase) Update(ctx context.Context, b *model.Book) error {
	if err := validate(b); err != nil {
		return cerr.BadRequest(err)
	}
	err := books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := books.booksrp.Tx(tx)
			old, err := q.Lock(ctx, b.ID)
			if err != nil {
				return fmt.Errorf("locking book: %w", err)
			}
			b.Status = old.Status
			return q.Update(ctx, b)
		})
	})
	if err != nil {
		return fmt.Errorf("updating book %s: %w", b.ID, err)
	}
	return nil
}

// Delete removes the id book. Books which are lent out may not be
// deleted. Returned loans of a deleted book are kept, referring to it
// by title only.
func (books *UseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := books.booksrp.Tx(tx)
			if _, err := q.Lock(ctx, id); err != nil {
				return fmt.Errorf("locking book: %w", err)
			}
			lent, err := books.loansrp.Tx(tx).HasOpen(ctx, "", id)
			if err != nil {
				return fmt.Errorf("checking open loans: %w", err)
			}
			if lent {
				return cerr.Conflict(ErrBookIsLent)
			}
			return q.Delete(ctx, id)
		})
	})
	if err != nil {
		return fmt.Errorf("deleting book %s: %w", id, err)
	}
	log.Info(ctx, "book is deleted", log.Stringer("book", id))
	return nil
}

// Dashboard computes the inventory and loans counters for today.
func (books *UseCase) Dashboard(
	ctx context.Context,
) (s *model.DashboardStats, err error) {
	today := model.Date(books.now().In(books.location))
	err = books.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		s, err = books.booksrp.Conn(c).Stats(ctx, today)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("computing dashboard stats: %w", err)
	}
	return s, nil
}

func validate(b *model.Book) error {
	switch {
	case b.Title == "":
		return errors.New("book name is required")
	case b.Author == "":
		return errors.New("author is required")
	case b.Subject == "":
		return errors.New("subject is required")
	case b.Picture == "":
		return errors.New("picture is required")
	}
	return nil
}
