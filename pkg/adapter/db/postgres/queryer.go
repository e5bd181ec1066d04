// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/libcat/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer is a type constraint for the generic repository functions
// which may run on both of a Conn and a Tx. Such functions use the
// GORM method in order to build queries.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer
	GORM(ctx context.Context) *gorm.DB
}
