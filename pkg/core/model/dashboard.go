// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// DashboardStats aggregates the inventory and loans counters which are
// shown to the administrators.
type DashboardStats struct {
	TotalBooks     int64 // number of books in the inventory
	AvailableBooks int64 // books with the Available status
	BorrowedBooks  int64 // open loans
	OverdueBooks   int64 // open loans which are due before today
}
