// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/internal/test/dbcontainer"
	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/loansrp"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/schema"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/repo"
	"github.com/momeni/libcat/pkg/core/usecase/booksuc"
	"github.com/momeni/libcat/pkg/core/usecase/loansuc"
	"github.com/stretchr/testify/suite"
)

type IntegrationReposTestSuite struct {
	suite.Suite

	Ctx   context.Context
	Pool  *postgres.Pool
	Books *booksrp.Repo
	Loans *loansrp.Repo
	Today time.Time

	loansUC *loansuc.UseCase
	booksUC *booksuc.UseCase
}

func TestIntegrationReposTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, false, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationReposTestSuite{
		Ctx:   ctx,
		Pool:  pool,
		Books: booksrp.New(),
		Loans: loansrp.New(),
		Today: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	})
}

func (irts *IntegrationReposTestSuite) SetupTest() {
	irts.Require().NoError(dbcontainer.Truncate(irts.Ctx, irts.Pool))
	clock := func() time.Time { return irts.Today }
	var err error
	irts.loansUC, err = loansuc.New(
		irts.Pool, irts.Books, irts.Loans, loansuc.WithClock(clock),
	)
	irts.Require().NoError(err, "loansuc.New")
	irts.booksUC, err = booksuc.New(
		irts.Pool, irts.Books, irts.Loans, booksuc.WithClock(clock),
	)
	irts.Require().NoError(err, "booksuc.New")
}

func (irts *IntegrationReposTestSuite) addBook(title, subject string) uuid.UUID {
	b := &model.Book{
		Title:   title,
		Author:  "Author of " + title,
		Subject: subject,
		Picture: "/images/" + title + ".jpg",
	}
	irts.Require().NoError(irts.booksUC.Add(irts.Ctx, b), "adding %q", title)
	return b.ID
}

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (irts *IntegrationReposTestSuite) TestLendAndReturn() {
	id := irts.addBook("Moby Dick", "Adventure")
	v, err := irts.loansUC.CreateLoan(irts.Ctx, &model.NewLoan{
		Borrower:   "Alice",
		BookID:     id,
		BorrowedOn: date("2024-01-01"),
		DueOn:      date("2024-01-15"),
	})
	irts.Require().NoError(err, "CreateLoan")
	irts.Equal(5, v.DaysRemaining)

	b, err := irts.booksUC.Get(irts.Ctx, id)
	irts.Require().NoError(err)
	irts.Equal(model.BookNotAvailable, b.Status)

	vv, err := irts.loansUC.ListLoans(irts.Ctx)
	irts.Require().NoError(err)
	irts.Require().Len(vv, 1)
	irts.Equal(date("2024-01-01"), vv[0].BorrowedOn, "date round trip")
	irts.Equal(date("2024-01-15"), vv[0].DueOn, "date round trip")
	irts.Equal("Moby Dick", vv[0].BookTitle)

	_, err = irts.loansUC.CreateLoan(irts.Ctx, &model.NewLoan{
		Borrower:   "Bob",
		BookTitle:  "Moby Dick",
		BorrowedOn: date("2024-01-02"),
		DueOn:      date("2024-01-16"),
	})
	irts.ErrorIs(err, loansuc.ErrBookNotAvailable)

	irts.Require().NoError(irts.loansUC.ReturnLoan(irts.Ctx, v.ID, model.LoanReturned))
	b, err = irts.booksUC.Get(irts.Ctx, id)
	irts.Require().NoError(err)
	irts.Equal(model.BookAvailable, b.Status)

	err = irts.loansUC.ReturnLoan(irts.Ctx, v.ID, model.LoanReturned)
	irts.Equal(http.StatusConflict, cerr.StatusCode(err))
	err = irts.loansUC.ReturnLoan(irts.Ctx, uuid.New(), model.LoanReturned)
	irts.Equal(http.StatusNotFound, cerr.StatusCode(err))
}

func (irts *IntegrationReposTestSuite) TestConcurrentLending() {
	id := irts.addBook("Dune", "Science Fiction")
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = irts.loansUC.CreateLoan(irts.Ctx, &model.NewLoan{
				Borrower:   fmt.Sprintf("borrower-%d", i),
				BookID:     id,
				BorrowedOn: date("2024-01-01"),
				DueOn:      date("2024-01-15"),
			})
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		irts.ErrorIs(err, loansuc.ErrBookNotAvailable)
	}
	irts.Equal(1, succeeded)
	vv, err := irts.loansUC.ListLoans(irts.Ctx)
	irts.Require().NoError(err)
	irts.Len(vv, 1)
}

func (irts *IntegrationReposTestSuite) TestOpenLoanUniqueIndex() {
	id := irts.addBook("Emma", "Romance")
	insert := func(borrower string) error {
		return irts.Pool.Conn(irts.Ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
				return irts.Loans.Tx(tx).Create(ctx, &model.Loan{
					Borrower:   borrower,
					BookID:     id,
					BookTitle:  "Emma",
					BorrowedOn: date("2024-01-01"),
					DueOn:      date("2024-01-15"),
					Status:     model.LoanNotReturned,
				})
			})
		})
	}
	irts.Require().NoError(insert("Alice"))
	err := insert("Bob")
	irts.Equal(http.StatusConflict, cerr.StatusCode(err))
}

func (irts *IntegrationReposTestSuite) TestSearchAndStats() {
	irts.addBook("Dune", "Science Fiction")
	irts.addBook("Foundation", "Science Fiction")
	emma := irts.addBook("Emma", "Romance")
	_, err := irts.loansUC.CreateLoan(irts.Ctx, &model.NewLoan{
		Borrower:   "Alice",
		BookID:     emma,
		BorrowedOn: date("2024-01-01"),
		DueOn:      date("2024-01-09"),
	})
	irts.Require().NoError(err)

	bb, err := irts.booksUC.Search(irts.Ctx, model.BookFilter{Query: "FICTION"})
	irts.Require().NoError(err)
	irts.Len(bb, 2)
	irts.Equal("Dune", bb[0].Title)

	bb, err = irts.booksUC.Search(irts.Ctx, model.BookFilter{
		Status: model.BookNotAvailable,
	})
	irts.Require().NoError(err)
	irts.Require().Len(bb, 1)
	irts.Equal(emma, bb[0].ID)

	bb, err = irts.booksUC.Featured(irts.Ctx)
	irts.Require().NoError(err)
	irts.Len(bb, 3)

	s, err := irts.booksUC.Dashboard(irts.Ctx)
	irts.Require().NoError(err)
	irts.Equal(&model.DashboardStats{
		TotalBooks:     3,
		AvailableBooks: 2,
		BorrowedBooks:  1,
		OverdueBooks:   1,
	}, s)

	overdue, err := irts.loansUC.ListOverdueLoans(irts.Ctx)
	irts.Require().NoError(err)
	irts.Require().Len(overdue, 1)
	irts.Equal(-1, overdue[0].DaysRemaining)
}

func (irts *IntegrationReposTestSuite) TestBooksMaintenance() {
	id := irts.addBook("Sapiens", "History")
	err := irts.booksUC.Add(irts.Ctx, &model.Book{
		Title: "Sapiens", Author: "Y. N. Harari", Subject: "History",
		Picture: "/images/other.jpg",
	})
	irts.Equal(http.StatusConflict, cerr.StatusCode(err), "duplicate title")

	v, err := irts.loansUC.CreateLoan(irts.Ctx, &model.NewLoan{
		Borrower:   "Alice",
		BookID:     id,
		BorrowedOn: date("2024-01-01"),
		DueOn:      date("2024-01-15"),
	})
	irts.Require().NoError(err)
	err = irts.booksUC.Delete(irts.Ctx, id)
	irts.ErrorIs(err, booksuc.ErrBookIsLent)

	irts.Require().NoError(irts.loansUC.ReturnLoan(irts.Ctx, v.ID, model.LoanReturned))
	irts.Require().NoError(irts.booksUC.Delete(irts.Ctx, id))
	vv, err := irts.loansUC.ListLoans(irts.Ctx)
	irts.Require().NoError(err)
	irts.Require().Len(vv, 1, "returned loans are kept")
	irts.Equal(uuid.Nil, vv[0].BookID)
	irts.Equal("Sapiens", vv[0].BookTitle)
}

func (irts *IntegrationReposTestSuite) tableSizes() map[string]int64 {
	var sizes map[string]int64
	err := irts.Pool.Conn(irts.Ctx, func(ctx context.Context, c repo.Conn) error {
		var err error
		sizes, err = schema.Sizes(ctx, c)
		return err
	})
	irts.Require().NoError(err, "schema.Sizes")
	return sizes
}

func (irts *IntegrationReposTestSuite) TestTableSizes() {
	irts.Equal(map[string]int64{"books": 0, "loans": 0}, irts.tableSizes())
	irts.addBook("Dune", "Science Fiction")
	id := irts.addBook("Emma", "Romance")
	_, err := irts.loansUC.CreateLoan(irts.Ctx, &model.NewLoan{
		Borrower:   "Alice",
		BookID:     id,
		BorrowedOn: date("2024-01-01"),
		DueOn:      date("2024-01-15"),
	})
	irts.Require().NoError(err)
	irts.Equal(map[string]int64{"books": 2, "loans": 1}, irts.tableSizes())

	err = irts.Pool.Conn(irts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			sizes, err := schema.Sizes(ctx, tx)
			if err != nil {
				return err
			}
			irts.Equal(int64(2), sizes["books"], "sizes within a tx")
			return nil
		})
	})
	irts.NoError(err)

	err = irts.Pool.Conn(irts.Ctx, func(ctx context.Context, c repo.Conn) error {
		rows, err := c.Query(ctx, "SELECT * FROM missing_table")
		defer rows.Close()
		irts.False(rows.Next(), "failed queries have no rows")
		return err
	})
	irts.Error(err, "querying a missing table")
}
