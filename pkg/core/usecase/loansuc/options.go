// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package loansuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the loans use case.
type Option func(uc *UseCase) error

// WithClock option replaces the time.Now function which is used for
// finding the current date (e.g., in order to compute overdue loans).
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}

// WithLocation option configures the time zone which determines the
// current calendar date. By default, time.UTC is used.
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCase) error {
		if loc == nil {
			return errors.New("location is nil")
		}
		if uc.location != nil {
			return errors.New("location is already configured")
		}
		uc.location = loc
		return nil
	}
}

// WithMaxLoanPeriod option configures a loans UseCase instance in
// order to reject loans which their due date is farther than period
// from their borrow date. By default, any period is accepted.
func WithMaxLoanPeriod(period time.Duration) Option {
	return func(uc *UseCase) error {
		if d := int64(period); d <= 0 {
			return fmt.Errorf("period (%d) is not positive", d)
		}
		if uc.maxLoanPeriod != 0 {
			return errors.New("max loan period is already configured")
		}
		uc.maxLoanPeriod = period
		return nil
	}
}

// WithDuplicateLoans option disables the check which rejects a loan
// when the same borrower has an open loan for the same book.
func WithDuplicateLoans() Option {
	return func(uc *UseCase) error {
		uc.allowDuplicate = true
		return nil
	}
}
