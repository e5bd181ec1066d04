// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram hashes and verifies the administrators passwords using
// the SCRAM-SHA-256 (or SCRAM-SHA-1) stored credentials format.
// Only the stored and server keys are kept, so the password may not
// be recovered from a hash string, but a candidate password can be
// checked by recomputing them with the same salt and iterations.
package scram

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xdg-go/scram"
)

// ErrMalformedHash indicates that a hash string does not follow the
// SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
// format or was created by another mechanism.
var ErrMalformedHash = errors.New("malformed scram hash")

// Mechanism implements the github.com/momeni/libcat/pkg/core/scram
// HashVerifier interface for a fixed underlying hash algorithm,
// relying on the github.com/xdg-go/scram module.
type Mechanism struct {
	hashGenerator scram.HashGeneratorFcn
	outLen        int // bytes
	name          string
}

// SHA1 returns a new Mechanism instance using the SHA1 as its
// underlying hash algorithm.
func SHA1() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA1,
		outLen:        160 / 8,
		name:          "SCRAM-SHA-1",
	}
}

// SHA256 returns a new Mechanism instance using the SHA256 as its
// underlying hash algorithm.
func SHA256() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA256,
		outLen:        256 / 8,
		name:          "SCRAM-SHA-256",
	}
}

// Hash computes a hash string for pass, in the format which is
// described by ErrMalformedHash. The pass is normalized using the
// SASLprep profile (RFC 4013) and normalization failures are
// returned as errors.
//
// The salt must be a base64 encoded string or empty which makes Hash
// to generate a random salt. The iters must be at least 4096, while
// RFC 7677 recommends 15000 or more.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < 4096:
		return "", fmt.Errorf("iters (%d) is less than 4096", iters)
	}
	if salt == "" {
		saltBytes := make([]byte, m.outLen)
		if _, err := rand.Read(saltBytes); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(saltBytes)
	}
	sc, err := m.storedCredentials(pass, salt, iters)
	if err != nil {
		return "", fmt.Errorf("obtaining stored credentials: %w", err)
	}
	h := fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name,
		iters, salt,
		base64.StdEncoding.EncodeToString(sc.StoredKey),
		base64.StdEncoding.EncodeToString(sc.ServerKey),
	)
	return h, nil
}

// Verify checks if pass matches the hash string which was created by
// the Hash method of the same mechanism. Keys are compared in
// constant time.
func (m *Mechanism) Verify(pass, hash string) (bool, error) {
	h, err := m.parse(hash)
	if err != nil {
		return false, err
	}
	if pass == "" {
		return false, nil
	}
	sc, err := m.storedCredentials(pass, h.salt, h.iters)
	if err != nil {
		return false, fmt.Errorf("obtaining stored credentials: %w", err)
	}
	ok := hmac.Equal(sc.StoredKey, h.storedKey) &&
		hmac.Equal(sc.ServerKey, h.serverKey)
	return ok, nil
}

type parsedHash struct {
	iters     int
	salt      string // base64 encoded
	storedKey []byte
	serverKey []byte
}

func (m *Mechanism) parse(hash string) (*parsedHash, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 || parts[0] != m.name {
		return nil, ErrMalformedHash
	}
	itersStr, salt, ok := strings.Cut(parts[1], ":")
	if !ok {
		return nil, ErrMalformedHash
	}
	iters, err := strconv.Atoi(itersStr)
	if err != nil || iters < 4096 {
		return nil, ErrMalformedHash
	}
	storedStr, serverStr, ok := strings.Cut(parts[2], ":")
	if !ok {
		return nil, ErrMalformedHash
	}
	h := &parsedHash{iters: iters, salt: salt}
	if h.storedKey, err = base64.StdEncoding.DecodeString(storedStr); err != nil {
		return nil, fmt.Errorf("%w: stored key: %w", ErrMalformedHash, err)
	}
	if h.serverKey, err = base64.StdEncoding.DecodeString(serverStr); err != nil {
		return nil, fmt.Errorf("%w: server key: %w", ErrMalformedHash, err)
	}
	return h, nil
}

func (m *Mechanism) storedCredentials(
	pass, salt string, iters int,
) (*scram.StoredCredentials, error) {
	// user and authzID do not affect the stored credentials
	c, err := m.hashGenerator.NewClient("admin", pass, "")
	if err != nil {
		return nil, fmt.Errorf("creating SCRAM client: %w", err)
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 salt: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(saltBytes),
		Iters: iters,
	})
	return &sc, nil
}
