// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the expected interfaces for Salted Challenge
// Response Authentication Mechanism (SCRAM) password hashes. For the
// corresponding implementation, check the adapter layer.
//
// The administrators passwords are never kept in plaintext. The
// "hash-password" command computes a hash string for a password and
// that string is written in the configuration file. Thereafter, the
// authentication use case verifies login attempts against it.
package scram

// Hasher represents the expectations from a SCRAM hasher implementation
// which for a specific underlying hash function (e.g., SHA1 or SHA256)
// computes the storedKey and serverKey values whenever its Hash method
// is called with the relevant pass, salt, and iters arguments,
// representing password, random salt value, and hashing iterations
// count.
type Hasher interface {
	// Hash computes a hash string following the standard scram hash
	// format, so it can be stored and used later for authentication.
	//
	// The pass argument must be non-empty. The salt must contain a
	// base64 encoding of the desired salt bytes, otherwise, if an empty
	// value is passed, a random salt will be generated and used
	// instead. The iters must be at least equal to 4096.
	//
	// In absence of errors, a hashed string will be returned which
	// conforms to the following format.
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	Hash(pass, salt string, iters int) (string, error)
}

// Verifier checks a password against a hash string which was created
// by a Hasher.
type Verifier interface {
	// Verify returns true if pass matches with the hash string.
	// A malformed hash string causes an error.
	Verify(pass, hash string) (bool, error)
}

// HashVerifier can both create and verify hash strings.
type HashVerifier interface {
	Hasher
	Verifier
}
