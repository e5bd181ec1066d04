// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Loan models one borrowing transaction, lending one book to one
// borrower for a range of calendar days.
//
// BookID may be uuid.Nil when the referenced book was deleted after
// the loan was returned. BookTitle is a denormalized copy of the book
// title at the lending time, kept for display purposes.
type Loan struct {
	ID         uuid.UUID
	Borrower   string
	BookID     uuid.UUID
	BookTitle  string
	BorrowedOn time.Time // calendar date, see Date
	DueOn      time.Time // calendar date, see Date
	Status     LoanStatus
}

// LoanStatus specifies if a loan is open or closed. It is persisted
// and (de)serialized as a string.
type LoanStatus int

// Valid values for the LoanStatus enum.
const (
	LoanStatusInvalid LoanStatus = iota // zero value is invalid

	LoanNotReturned // open loan, the book is lent out
	LoanReturned    // closed loan, the book was brought back
)

// ErrUnknownLoanStatus indicates that a given string may not be parsed
// as a known loan status.
var ErrUnknownLoanStatus = errors.New("unknown loan status")

// LoanStatusError indicates an invalid numeric loan status.
type LoanStatusError int

// Error implements the error interface.
func (e LoanStatusError) Error() string {
	return fmt.Sprintf("invalid loan status: %d", e)
}

// Validate returns nil if LoanStatus value is valid. For invalid
// values, an instance of the LoanStatusError will be returned.
func (s LoanStatus) Validate() error {
	switch s {
	case LoanNotReturned, LoanReturned:
		return nil
	default:
		return LoanStatusError(s)
	}
}

// String converts the LoanStatus enum to its persisted string form.
// Invalid loan status causes a panic.
func (s LoanStatus) String() string {
	switch s {
	case LoanNotReturned:
		return "Not Returned"
	case LoanReturned:
		return "Returned"
	default:
		panic(LoanStatusError(s))
	}
}

// ParseLoanStatus parses the given string and returns a LoanStatus.
// For invalid strings, LoanStatusInvalid and ErrUnknownLoanStatus
// will be returned.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch s {
	case "Not Returned":
		return LoanNotReturned, nil
	case "Returned":
		return LoanReturned, nil
	default:
		return LoanStatusInvalid, ErrUnknownLoanStatus
	}
}

// DaysRemaining returns the number of calendar days from today until
// the due date of l. It is zero when the loan is due today and
// negative when the due date is in the past.
func (l *Loan) DaysRemaining(today time.Time) int {
	return DaysBetween(today, l.DueOn)
}

// IsOverdue reports whether l is open and its due date was strictly
// before today.
func (l *Loan) IsOverdue(today time.Time) bool {
	return l.Status == LoanNotReturned && l.DaysRemaining(today) < 0
}

// View computes the derived fields of l for the given today date.
func (l *Loan) View(today time.Time) *LoanView {
	v := &LoanView{
		Loan:          *l,
		DaysRemaining: l.DaysRemaining(today),
		Overdue:       l.IsOverdue(today),
	}
	switch {
	case l.Status == LoanReturned:
		v.DisplayStatus = "Returned"
	case v.Overdue:
		v.DisplayStatus = "Overdue"
	default:
		v.DisplayStatus = "Not Returned"
	}
	return v
}

// LoanView is a Loan which is enriched by its derived (not stored)
// fields, as computed for a specific date.
type LoanView struct {
	Loan

	DaysRemaining int    // due date minus today in calendar days
	Overdue       bool   // open and due before today
	DisplayStatus string // Returned, Overdue, or Not Returned
}

// NewLoan describes a loan creation request. Exactly one of the BookID
// or BookTitle is normally given, but if both are given, they must
// refer to the same book.
type NewLoan struct {
	Borrower   string
	BookID     uuid.UUID
	BookTitle  string
	BorrowedOn time.Time
	DueOn      time.Time
}
