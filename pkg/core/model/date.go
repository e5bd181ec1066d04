// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// DateLayout is the textual format of calendar dates as they are
// exchanged with the clients, e.g., 2024-01-15.
const DateLayout = time.DateOnly

// Date truncates t to its calendar date (as seen in the location of t)
// and returns the midnight of that date in UTC. Comparing two values
// which are returned by Date is not affected by time zones or daylight
// saving transitions, so it has a calendar-day granularity.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from the `from`
// date until the `to` date. Time of day components are ignored, so
// two instants on the same calendar date are zero days apart.
// Whole day counts are subtracted, so gaps longer than the range of
// a time.Duration are computed correctly too.
func DaysBetween(from, to time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int(Date(to).Unix()/secondsPerDay - Date(from).Unix()/secondsPerDay)
}

// ParseDate parses s as a calendar date following the DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
