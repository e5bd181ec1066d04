// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// Models are kept free of serialization tags. The adapter layer
// defines its own structs (for tables rows or REST payloads) and
// converts them to and from these models.
package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Book models one copy of a book in the library inventory.
// The Status field is kept in sync with the loans of the book by
// the loans use case and may not be edited directly.
type Book struct {
	ID      uuid.UUID  // unique book identifier
	Title   string     // unique title of the book
	Author  string     // author name
	Subject string     // subject category, e.g., Physics
	Picture string     // cover-image reference (URL or path)
	Status  BookStatus // availability of the book
}

// BookStatus specifies the availability of a book. Although this enum
// is numeric, it is persisted and (de)serialized as a string.
type BookStatus int

// Valid values for the BookStatus enum.
const (
	BookStatusInvalid BookStatus = iota // zero value is invalid

	BookAvailable    // no open loan references the book
	BookNotAvailable // exactly one open loan references the book
)

// ErrUnknownBookStatus indicates that a given string may not be parsed
// as a known book status. The caller knows the rejected string and
// should wrap this error with it if required.
var ErrUnknownBookStatus = errors.New("unknown book status")

// BookStatusError indicates an invalid numeric book status.
type BookStatusError int

// Error implements the error interface.
func (e BookStatusError) Error() string {
	return fmt.Sprintf("invalid book status: %d", e)
}

// Validate returns nil if BookStatus value is valid. For invalid
// values, an instance of the BookStatusError will be returned.
func (s BookStatus) Validate() error {
	switch s {
	case BookAvailable, BookNotAvailable:
		return nil
	default:
		return BookStatusError(s)
	}
}

// String converts the BookStatus enum to its persisted string form.
// Invalid book status causes a panic.
func (s BookStatus) String() string {
	switch s {
	case BookAvailable:
		return "Available"
	case BookNotAvailable:
		return "Not Available"
	default:
		panic(BookStatusError(s))
	}
}

// ParseBookStatus parses the given string and returns a BookStatus.
// For invalid strings, BookStatusInvalid and ErrUnknownBookStatus
// will be returned.
func ParseBookStatus(s string) (BookStatus, error) {
	switch s {
	case "Available":
		return BookAvailable, nil
	case "Not Available":
		return BookNotAvailable, nil
	default:
		return BookStatusInvalid, ErrUnknownBookStatus
	}
}

// BookFilter specifies the criteria of a books search. Empty fields
// are ignored. Query is matched case-insensitively as a substring of
// the title, author, or subject, while Subject and Status must match
// exactly when they are given.
type BookFilter struct {
	Query   string
	Subject string
	Status  BookStatus // BookStatusInvalid means any status
}
