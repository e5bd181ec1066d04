// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings provides the generic helpers and value types which
// are used by the config package for decoding, defaulting, and range
// checking the configuration settings.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Duration is a time.Duration which is decoded from and encoded to
// a human-readable text. In addition to the time.ParseDuration units,
// a whole number of days may be written with the d suffix, like 14d,
// since loan periods are usually expressed in days.
type Duration time.Duration

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// The receiver is updated only if data could be parsed.
func (d *Duration) UnmarshalText(data []byte) error {
	s := string(data)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseInt(days, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid days duration %q: %w", s, err)
		}
		*d = Duration(time.Duration(n) * day)
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Marshal returns a string representation of the d duration, or nil
// if d is nil. Whole days are written as days (like 14d) and zero
// trailing minutes and seconds are omitted (like 2h instead of
// 2h0m0s). A zero duration is written as 0h.
func (d *Duration) Marshal() *string {
	if d == nil {
		return nil
	}
	dd := time.Duration(*d)
	if dd != 0 && dd%day == 0 {
		s := strconv.FormatInt(int64(dd/day), 10) + "d"
		return &s
	}
	s := dd.String()
	switch {
	case dd == 0:
		s = "0h"
	case strings.HasSuffix(s, "h0m0s"):
		s = strings.TrimSuffix(s, "0m0s")
	case strings.HasSuffix(s, "m0s"):
		s = strings.TrimSuffix(s, "0s")
	}
	return &s
}

// MarshalText implements encoding.TextMarshaler interface and
// serializes d using its Marshal method.
func (d *Duration) MarshalText() ([]byte, error) {
	if s := d.Marshal(); s != nil {
		return []byte(*s), nil
	}
	return nil, errors.New("nil duration")
}

// LogValue implements the slog.LogValuer interface, so a nil Duration
// may be logged too.
func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("nil-duration")
	}
	return slog.DurationValue(time.Duration(*d))
}
