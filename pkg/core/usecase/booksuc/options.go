// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package booksuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the books use case.
type Option func(uc *UseCase) error

// WithFeaturedCount option configures how many books are returned by
// the Featured method. The default count is 6.
func WithFeaturedCount(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("featured count (%d) is not positive", n)
		}
		if uc.featuredCount != 0 {
			return errors.New("featured count is already configured")
		}
		uc.featuredCount = n
		return nil
	}
}

// WithClock option replaces the time.Now function which is used by
// the Dashboard method for counting the overdue loans.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
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
		uc.location = loc
		return nil
	}
}
