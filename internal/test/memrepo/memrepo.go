// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memrepo is an internal helper for the use cases test
// packages. It provides an in-memory repo.Pool implementation and
// books and loans repositories which operate on it, so use cases can
// be tested without a PostgreSQL server.
//
// Transactions are serialized by a mutex (which is stricter than the
// row locks of a DBMS) and a failed transaction restores the snapshot
// which was taken when it began, so atomicity can be asserted.
package memrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/model"
	"github.com/momeni/libcat/pkg/core/repo"
)

// ErrNoSQL is returned by Exec and Query since raw SQL statements
// are not supported by the in-memory store.
var ErrNoSQL = errors.New("raw sql is not supported")

// Store keeps books and loans in memory. It implements repo.Pool.
type Store struct {
	mu    sync.Mutex
	books map[uuid.UUID]model.Book
	loans map[uuid.UUID]model.Loan

	// FailOn makes the named method (e.g., "Books.SetStatus") fail
	// with the given error, simulating a storage failure.
	FailOn map[string]error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		books:  make(map[uuid.UUID]model.Book),
		loans:  make(map[uuid.UUID]model.Loan),
		FailOn: make(map[string]error),
	}
}

// AddBook inserts b directly (with no transaction) and returns its ID.
// A fresh ID is generated if b.ID is uuid.Nil.
func (s *Store) AddBook(b model.Book) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.books[b.ID] = b
	return b.ID
}

// AddLoan inserts l directly (with no transaction) and returns its ID.
func (s *Store) AddLoan(l model.Loan) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.loans[l.ID] = l
	return l.ID
}

// Book returns a copy of the id book and whether it was found.
func (s *Store) Book(id uuid.UUID) (model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

// Loans returns a copy of all loans.
func (s *Store) Loans() []model.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	ll := make([]model.Loan, 0, len(s.loans))
	for _, l := range s.loans {
		ll = append(ll, l)
	}
	return ll
}

// Snapshot returns copies of all books and loans, e.g., for asserting
// that a failed operation left the store unchanged.
func (s *Store) Snapshot() (map[uuid.UUID]model.Book, map[uuid.UUID]model.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMap(s.books), cloneMap(s.loans)
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	c := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Conn implements repo.Pool.
func (s *Store) Conn(ctx context.Context, f repo.ConnHandler) error {
	return f(ctx, &Conn{s: s})
}

// Conn is an in-memory connection. Its queries lock the store for
// the duration of each call.
type Conn struct {
	s *Store
}

func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrNoSQL
}

func (c *Conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrNoSQL
}

func (c *Conn) IsConn() {
}

// Tx runs f while holding the store lock. If f fails (or panics) all
// of its changes are discarded.
func (c *Conn) Tx(ctx context.Context, f repo.TxHandler) (err error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	books, loans := cloneMap(s.books), cloneMap(s.loans)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
		}
		if err != nil {
			s.books, s.loans = books, loans
			err = fmt.Errorf("handler: %w", err)
		}
	}()
	return f(ctx, &Tx{s: s})
}

// Tx is an in-memory transaction. The store lock is held by the Conn
// which created it.
type Tx struct {
	s *Store
}

func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrNoSQL
}

func (tx *Tx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrNoSQL
}

func (tx *Tx) IsTx() {
}

// Books is the in-memory books repository.
type Books struct{}

// Loans is the in-memory loans repository.
type Loans struct{}

func (Books) Conn(c repo.Conn) repo.BooksConnQueryer {
	return bookQueryer{s: c.(*Conn).s, locked: false}
}

func (Books) Tx(tx repo.Tx) repo.BooksTxQueryer {
	return bookQueryer{s: tx.(*Tx).s, locked: true}
}

func (Loans) Conn(c repo.Conn) repo.LoansConnQueryer {
	return loanQueryer{s: c.(*Conn).s, locked: false}
}

func (Loans) Tx(tx repo.Tx) repo.LoansTxQueryer {
	return loanQueryer{s: tx.(*Tx).s, locked: true}
}

// guard locks the store unless it is already locked by an ongoing
// transaction and returns the relevant unlock function.
func guard(s *Store, locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type bookQueryer struct {
	s      *Store
	locked bool
}

func (q bookQueryer) Get(_ context.Context, id uuid.UUID) (*model.Book, error) {
	defer guard(q.s, q.locked)()
	return q.get(id)
}

func (q bookQueryer) get(id uuid.UUID) (*model.Book, error) {
	b, ok := q.s.books[id]
	if !ok {
		return nil, cerr.NotFound(errors.New("book not found"))
	}
	return &b, nil
}

func (q bookQueryer) List(context.Context) ([]model.Book, error) {
	return q.Search(context.Background(), model.BookFilter{})
}

func (q bookQueryer) Search(_ context.Context, f model.BookFilter) ([]model.Book, error) {
	defer guard(q.s, q.locked)()
	lq := strings.ToLower(f.Query)
	bb := make([]model.Book, 0)
	for _, b := range q.s.books {
		switch {
		case f.Subject != "" && b.Subject != f.Subject:
			continue
		case f.Status != model.BookStatusInvalid && b.Status != f.Status:
			continue
		case lq != "" &&
			!strings.Contains(strings.ToLower(b.Title), lq) &&
			!strings.Contains(strings.ToLower(b.Author), lq) &&
			!strings.Contains(strings.ToLower(b.Subject), lq):
			continue
		}
		bb = append(bb, b)
	}
	sort.Slice(bb, func(i, j int) bool { return bb[i].Title < bb[j].Title })
	return bb, nil
}

func (q bookQueryer) Featured(ctx context.Context, limit int) ([]model.Book, error) {
	bb, err := q.List(ctx)
	if len(bb) > limit {
		bb = bb[:limit]
	}
	return bb, err
}

func (q bookQueryer) Stats(_ context.Context, today time.Time) (*model.DashboardStats, error) {
	defer guard(q.s, q.locked)()
	st := &model.DashboardStats{TotalBooks: int64(len(q.s.books))}
	for _, b := range q.s.books {
		if b.Status == model.BookAvailable {
			st.AvailableBooks++
		}
	}
	for _, l := range q.s.loans {
		if l.Status == model.LoanNotReturned {
			st.BorrowedBooks++
			if l.IsOverdue(today) {
				st.OverdueBooks++
			}
		}
	}
	return st, nil
}

func (q bookQueryer) titleTaken(title string, except uuid.UUID) bool {
	for id, b := range q.s.books {
		if b.Title == title && id != except {
			return true
		}
	}
	return false
}

func (q bookQueryer) Create(_ context.Context, b *model.Book) error {
	if err := q.s.FailOn["Books.Create"]; err != nil {
		return err
	}
	if q.titleTaken(b.Title, uuid.Nil) {
		return cerr.Conflict(errors.New("duplicate book name"))
	}
	b.ID = uuid.New()
	q.s.books[b.ID] = *b
	return nil
}

func (q bookQueryer) Update(_ context.Context, b *model.Book) error {
	old, err := q.get(b.ID)
	if err != nil {
		return err
	}
	if q.titleTaken(b.Title, b.ID) {
		return cerr.Conflict(errors.New("duplicate book name"))
	}
	b.Status = old.Status
	q.s.books[b.ID] = *b
	return nil
}

func (q bookQueryer) Delete(_ context.Context, id uuid.UUID) error {
	if _, err := q.get(id); err != nil {
		return err
	}
	delete(q.s.books, id)
	for lid, l := range q.s.loans {
		if l.BookID == id {
			l.BookID = uuid.Nil
			q.s.loans[lid] = l
		}
	}
	return nil
}

func (q bookQueryer) Lock(_ context.Context, id uuid.UUID) (*model.Book, error) {
	return q.get(id)
}

func (q bookQueryer) LockByTitle(_ context.Context, title string) (*model.Book, error) {
	for _, b := range q.s.books {
		if b.Title == title {
			return &b, nil
		}
	}
	return nil, cerr.NotFound(errors.New("book not found"))
}

func (q bookQueryer) SetStatus(_ context.Context, id uuid.UUID, st model.BookStatus) error {
	if err := q.s.FailOn["Books.SetStatus"]; err != nil {
		return err
	}
	b, err := q.get(id)
	if err != nil {
		return err
	}
	b.Status = st
	q.s.books[id] = *b
	return nil
}

type loanQueryer struct {
	s      *Store
	locked bool
}

func (q loanQueryer) Get(_ context.Context, id uuid.UUID) (*model.Loan, error) {
	defer guard(q.s, q.locked)()
	return q.get(id)
}

func (q loanQueryer) get(id uuid.UUID) (*model.Loan, error) {
	l, ok := q.s.loans[id]
	if !ok {
		return nil, cerr.NotFound(errors.New("loan not found"))
	}
	return &l, nil
}

func (q loanQueryer) List(context.Context) ([]model.Loan, error) {
	defer guard(q.s, q.locked)()
	ll := make([]model.Loan, 0, len(q.s.loans))
	for _, l := range q.s.loans {
		ll = append(ll, l)
	}
	sort.Slice(ll, func(i, j int) bool {
		return ll[i].BorrowedOn.After(ll[j].BorrowedOn)
	})
	return ll, nil
}

func (q loanQueryer) ListOverdue(ctx context.Context, today time.Time) ([]model.Loan, error) {
	ll, err := q.List(ctx)
	overdue := make([]model.Loan, 0)
	for _, l := range ll {
		if l.IsOverdue(today) {
			overdue = append(overdue, l)
		}
	}
	return overdue, err
}

func (q loanQueryer) Create(_ context.Context, l *model.Loan) error {
	if err := q.s.FailOn["Loans.Create"]; err != nil {
		return err
	}
	for _, o := range q.s.loans {
		if o.BookID == l.BookID && o.Status == model.LoanNotReturned {
			return cerr.Conflict(errors.New("book has an open loan"))
		}
	}
	l.ID = uuid.New()
	q.s.loans[l.ID] = *l
	return nil
}

func (q loanQueryer) Lock(_ context.Context, id uuid.UUID) (*model.Loan, error) {
	return q.get(id)
}

func (q loanQueryer) SetStatus(_ context.Context, id uuid.UUID, st model.LoanStatus) error {
	if err := q.s.FailOn["Loans.SetStatus"]; err != nil {
		return err
	}
	l, err := q.get(id)
	if err != nil {
		return err
	}
	l.Status = st
	q.s.loans[id] = *l
	return nil
}

func (q loanQueryer) HasOpen(_ context.Context, borrower string, bookID uuid.UUID) (bool, error) {
	for _, l := range q.s.loans {
		if l.BookID == bookID && l.Status == model.LoanNotReturned &&
			(borrower == "" || l.Borrower == borrower) {
			return true, nil
		}
	}
	return false, nil
}
