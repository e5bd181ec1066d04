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

// BooksConnQueryer holds the books queries which may run on a
// connection (outside of an explicit transaction).
type BooksConnQueryer interface {
	BooksQueryer
}

// BooksTxQueryer holds the books queries which need a transaction,
// because they lock rows or their effect must be committed along with
// other changes.
type BooksTxQueryer interface {
	BooksQueryer

	// Create inserts b with a fresh identifier, storing it in b.ID.
	// A duplicate title causes a cerr.Conflict error.
	Create(ctx context.Context, b *model.Book) error

	// Update overwrites the title, author, subject, and picture of
	// the b.ID book. The status is not changed. A missing book causes
	// a cerr.NotFound and a duplicate title causes cerr.Conflict.
	Update(ctx context.Context, b *model.Book) error

	// Delete removes the id book, returning cerr.NotFound if missing.
	Delete(ctx context.Context, id uuid.UUID) error

	// Lock fetches the id book using a locking read, so concurrent
	// transactions which try to lock it will wait until this
	// transaction ends. A missing book causes a cerr.NotFound.
	Lock(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// LockByTitle is similar to Lock but finds the book by its title.
	LockByTitle(ctx context.Context, title string) (*model.Book, error)

	// SetStatus updates the availability status of the id book.
	SetStatus(ctx context.Context, id uuid.UUID, s model.BookStatus) error
}

// BooksQueryer holds the read only books queries.
type BooksQueryer interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Featured(ctx context.Context, limit int) ([]model.Book, error)

	// Stats computes the dashboard counters, considering loans which
	// are due before the today calendar date as overdue.
	Stats(ctx context.Context, today time.Time) (*model.DashboardStats, error)
}

// Books is the books repository. It adapts connections and
// transactions into their relevant books queryer objects.
type Books interface {
	Conn(Conn) BooksConnQueryer
	Tx(Tx) BooksTxQueryer
}
