// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksrp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errBookNotFound = errors.New("book not found")

type gBook struct {
	BID     uuid.UUID `gorm:"primaryKey;type:uuid;column:bid"`
	Title   string
	Author  string
	Subject string
	Picture string
	Status  string
}

func (gb *gBook) TableName() string {
	return "books"
}

func (gb *gBook) Model() (*model.Book, error) {
	s, err := model.ParseBookStatus(gb.Status)
	if err != nil {
		return nil, fmt.Errorf("book %s status %q: %w", gb.BID, gb.Status, err)
	}
	return &model.Book{
		ID:      gb.BID,
		Title:   gb.Title,
		Author:  gb.Author,
		Subject: gb.Subject,
		Picture: gb.Picture,
		Status:  s,
	}, nil
}

func fromModel(b *model.Book) *gBook {
	return &gBook{
		BID:     b.ID,
		Title:   b.Title,
		Author:  b.Author,
		Subject: b.Subject,
		Picture: b.Picture,
		Status:  b.Status.String(),
	}
}

func models(gg []gBook) ([]model.Book, error) {
	bb := make([]model.Book, 0, len(gg))
	for i := range gg {
		b, err := gg[i].Model()
		if err != nil {
			return nil, err
		}
		bb = append(bb, *b)
	}
	return bb, nil
}

func first(gdb *gorm.DB, gb *gBook) (*model.Book, error) {
	err := gdb.Take(gb).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, cerr.NotFound(errBookNotFound)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gb.Model()
}

// Get finds the id book.
func Get[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) (*model.Book, error) {
	return first(q.GORM(ctx).Where("bid = ?", id), &gBook{})
}

// List returns all books ordered by title.
func List[Q postgres.Queryer](ctx context.Context, q Q) ([]model.Book, error) {
	var gg []gBook
	if err := q.GORM(ctx).Order("title").Find(&gg).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gg)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchSQL builds a parameterized SELECT statement for the f filter.
// The query matches case-insensitively as a substring of the title,
// author, or subject, while Subject and Status must match exactly.
func SearchSQL(f model.BookFilter) (string, []any, error) {
	ds := goqu.Dialect("postgres").From("books").Prepared(true).Select(
		"bid", "title", "author", "subject", "picture", "status",
	).Order(goqu.I("title").Asc())
	if f.Query != "" {
		pattern := "%" + likeEscaper.Replace(f.Query) + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
			goqu.C("subject").ILike(pattern),
		))
	}
	if f.Subject != "" {
		ds = ds.Where(goqu.C("subject").Eq(f.Subject))
	}
	if f.Status != model.BookStatusInvalid {
		ds = ds.Where(goqu.C("status").Eq(f.Status.String()))
	}
	return ds.ToSQL()
}

// Search finds books matching f, ordered by title.
func Search[Q postgres.Queryer](ctx context.Context, q Q, f model.BookFilter) ([]model.Book, error) {
	sql, args, err := SearchSQL(f)
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}
	var gg []gBook
	if err = q.GORM(ctx).Raw(sql, args...).Scan(&gg).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gg)
}

// Featured returns up to limit randomly chosen books.
func Featured[Q postgres.Queryer](ctx context.Context, q Q, limit int) ([]model.Book, error) {
	var gg []gBook
	err := q.GORM(ctx).Order("random()").Limit(limit).Find(&gg).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gg)
}

const statsSQL = `SELECT
 (SELECT count(*) FROM books) AS total_books,
 (SELECT count(*) FROM books WHERE status = 'Available') AS available_books,
 (SELECT count(*) FROM loans WHERE status = 'Not Returned') AS borrowed_books,
 (SELECT count(*) FROM loans
  WHERE status = 'Not Returned' AND due_on < $1) AS overdue_books`

// Stats computes the dashboard counters for the today date.
func Stats[Q postgres.Queryer](ctx context.Context, q Q, today time.Time) (*model.DashboardStats, error) {
	var s struct {
		TotalBooks     int64
		AvailableBooks int64
		BorrowedBooks  int64
		OverdueBooks   int64
	}
	err := q.GORM(ctx).Raw(statsSQL, today.Format(model.DateLayout)).Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &model.DashboardStats{
		TotalBooks:     s.TotalBooks,
		AvailableBooks: s.AvailableBooks,
		BorrowedBooks:  s.BorrowedBooks,
		OverdueBooks:   s.OverdueBooks,
	}, nil
}

// Create inserts b with a fresh identifier.
func Create(ctx context.Context, tx *postgres.Tx, b *model.Book) error {
	gb := fromModel(b)
	gb.BID = uuid.New()
	if err := tx.GORM(ctx).Create(gb).Error; err != nil {
		return fmt.Errorf("insert: %w", postgres.Translate(err))
	}
	b.ID = gb.BID
	return nil
}

// Update overwrites the descriptive columns of the b.ID book.
func Update(ctx context.Context, tx *postgres.Tx, b *model.Book) error {
	gdb := tx.GORM(ctx).Model(&gBook{}).Where("bid = ?", b.ID).Updates(
		map[string]any{
			"title":   b.Title,
			"author":  b.Author,
			"subject": b.Subject,
			"picture": b.Picture,
		},
	)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("update: %w", postgres.Translate(err))
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(errBookNotFound)
	}
	return nil
}

// Delete removes the id book. Loans which refer to it keep their
// titles and their book_id columns are set to NULL.
func Delete(ctx context.Context, tx *postgres.Tx, id uuid.UUID) error {
	gdb := tx.GORM(ctx).Where("bid = ?", id).Delete(&gBook{})
	if err := gdb.Error; err != nil {
		return fmt.Errorf("delete: %w", postgres.Translate(err))
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(errBookNotFound)
	}
	return nil
}

func lock(gdb *gorm.DB) *gorm.DB {
	return gdb.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Lock fetches the id book with SELECT ... FOR UPDATE.
func Lock(ctx context.Context, tx *postgres.Tx, id uuid.UUID) (*model.Book, error) {
	return first(lock(tx.GORM(ctx)).Where("bid = ?", id), &gBook{})
}

// LockByTitle fetches the title book with SELECT ... FOR UPDATE.
func LockByTitle(ctx context.Context, tx *postgres.Tx, title string) (*model.Book, error) {
	return first(lock(tx.GORM(ctx)).Where("title = ?", title), &gBook{})
}

// SetStatus updates the availability status of the id book.
func SetStatus(ctx context.Context, tx *postgres.Tx, id uuid.UUID, s model.BookStatus) error {
	gdb := tx.GORM(ctx).Model(&gBook{}).Where("bid = ?", id).Update(
		"status", s.String(),
	)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("update: %w", postgres.Translate(err))
	}
	if gdb.RowsAffected != 1 {
		return cerr.NotFound(errBookNotFound)
	}
	return nil
}
