// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksuc_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/internal/test/memrepo"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/usecase/booksuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newUseCase(
	t *testing.T, opts ...booksuc.Option,
) (*booksuc.UseCase, *memrepo.Store) {
	s := memrepo.New()
	opts = append(opts, booksuc.WithClock(func() time.Time {
		return today
	}))
	uc, err := booksuc.New(s, memrepo.Books{}, memrepo.Loans{}, opts...)
	require.NoError(t, err, "booksuc.New")
	return uc, s
}

func seed(s *memrepo.Store) map[string]uuid.UUID {
	ids := make(map[string]uuid.UUID)
	for _, b := range []model.Book{
		{Title: "Dune", Author: "Frank Herbert", Subject: "Science Fiction"},
		{Title: "Emma", Author: "Jane Austen", Subject: "Romance"},
		{Title: "Foundation", Author: "Isaac Asimov", Subject: "Science Fiction"},
		{Title: "Moby Dick", Author: "Herman Melville", Subject: "Adventure"},
	} {
		b.Picture = "/img/" + b.Title + ".jpg"
		b.Status = model.BookAvailable
		ids[b.Title] = s.AddBook(b)
	}
	return ids
}

func titles(bb []model.Book) []string {
	tt := make([]string, 0, len(bb))
	for _, b := range bb {
		tt = append(tt, b.Title)
	}
	return tt
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	ids := seed(s)
	b, _ := s.Book(ids["Dune"])
	b.Status = model.BookNotAvailable
	s.AddBook(b)

	cases := []struct {
		name   string
		filter model.BookFilter
		want   []string
	}{
		{"everything", model.BookFilter{}, []string{
			"Dune", "Emma", "Foundation", "Moby Dick",
		}},
		{"author substring", model.BookFilter{Query: "asimov"}, []string{
			"Foundation",
		}},
		{"subject via query", model.BookFilter{Query: "fiction"}, []string{
			"Dune", "Foundation",
		}},
		{"subject filter", model.BookFilter{Subject: "Romance"}, []string{
			"Emma",
		}},
		{"status filter", model.BookFilter{
			Query: "fiction", Status: model.BookAvailable,
		}, []string{"Foundation"}},
		{"no match", model.BookFilter{Query: "tolkien"}, []string{}},
	}
	for _, c := range cases {
		bb, err := uc.Search(ctx, c.filter)
		if assert.NoError(t, err, c.name) {
			assert.Equal(t, c.want, titles(bb), c.name)
		}
	}

	_, err := uc.Search(ctx, model.BookFilter{Status: model.BookStatus(7)})
	assert.Equal(t, http.StatusBadRequest, cerr.StatusCode(err))
}

func TestFeatured(t *testing.T) {
	ctx := context.Background()
	_, err := booksuc.New(
		memrepo.New(), memrepo.Books{}, memrepo.Loans{},
		booksuc.WithFeaturedCount(-1),
	)
	require.Error(t, err, "negative featured count")

	uc, s := newUseCase(t, booksuc.WithFeaturedCount(3))
	seed(s)
	bb, err := uc.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, bb, 3)
}

func TestAddUpdateDelete(t *testing.T) {
	ctx := context.Background()
	r := require.New(t)
	uc, s := newUseCase(t)
	seed(s)

	b := &model.Book{
		Title:   "Ulysses",
		Author:  "James Joyce",
		Subject: "Fiction",
		Picture: "/img/ulysses.jpg",
		Status:  model.BookNotAvailable,
	}
	r.NoError(uc.Add(ctx, b), "Add")
	r.NotEqual(uuid.Nil, b.ID)
	got, err := uc.Get(ctx, b.ID)
	r.NoError(err, "Get")
	r.Equal(model.BookAvailable, got.Status, "new books are available")

	dup := *b
	err = uc.Add(ctx, &dup)
	r.Equal(http.StatusConflict, cerr.StatusCode(err), "duplicate title")

	err = uc.Add(ctx, &model.Book{Title: "Untitled", Author: "Anonymous"})
	r.Equal(http.StatusBadRequest, cerr.StatusCode(err), "missing fields")

	upd := &model.Book{
		ID:      b.ID,
		Title:   "Ulysses",
		Author:  "J. Joyce",
		Subject: "Modernism",
		Picture: "/img/ulysses.jpg",
		Status:  model.BookNotAvailable,
	}
	r.NoError(uc.Update(ctx, upd), "Update")
	r.Equal(model.BookAvailable, upd.Status, "status is not editable")
	got, err = uc.Get(ctx, b.ID)
	r.NoError(err)
	r.Equal("J. Joyce", got.Author)

	upd.ID = uuid.New()
	err = uc.Update(ctx, upd)
	r.Equal(http.StatusNotFound, cerr.StatusCode(err), "missing book")

	r.NoError(uc.Delete(ctx, b.ID), "Delete")
	_, err = uc.Get(ctx, b.ID)
	r.Equal(http.StatusNotFound, cerr.StatusCode(err))
	err = uc.Delete(ctx, b.ID)
	r.Equal(http.StatusNotFound, cerr.StatusCode(err), "double delete")
}

func TestDeleteLentBook(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	ids := seed(s)
	s.AddLoan(model.Loan{
		Borrower:   "Alice",
		BookID:     ids["Emma"],
		BookTitle:  "Emma",
		BorrowedOn: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueOn:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:     model.LoanNotReturned,
	})
	err := uc.Delete(ctx, ids["Emma"])
	assert.ErrorIs(t, err, booksuc.ErrBookIsLent)
	assert.Equal(t, http.StatusConflict, cerr.StatusCode(err))
	_, found := s.Book(ids["Emma"])
	assert.True(t, found)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	uc, s := newUseCase(t)
	ids := seed(s)
	for title, due := range map[string]int{"Dune": 9, "Emma": 10} {
		b, _ := s.Book(ids[title])
		b.Status = model.BookNotAvailable
		s.AddBook(b)
		s.AddLoan(model.Loan{
			Borrower:   "Alice",
			BookID:     b.ID,
			BookTitle:  title,
			BorrowedOn: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DueOn:      time.Date(2024, 3, due, 0, 0, 0, 0, time.UTC),
			Status:     model.LoanNotReturned,
		})
	}
	st, err := uc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.DashboardStats{
		TotalBooks:     4,
		AvailableBooks: 2,
		BorrowedBooks:  2,
		OverdueBooks:   1,
	}, st)
}
