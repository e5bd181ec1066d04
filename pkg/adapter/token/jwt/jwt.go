// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jwt issues and parses the administrators bearer tokens as
// HS256 signed JSON Web Tokens, using the github.com/golang-jwt/jwt/v5
// module. It implements the authuc.Tokens interface.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "libcat"

// Signer keeps the HMAC secret key.
type Signer struct {
	key []byte
	now func() time.Time
}

// New creates a Signer for the secret key which must be at least 32
// bytes long.
func New(secret string) (*Signer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf(
			"token secret is too short (%d < 32 bytes)", len(secret),
		)
	}
	return &Signer{key: []byte(secret), now: time.Now}, nil
}

// Issue creates a token for subject which is valid for ttl.
func (s *Signer) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature, issuer, and expiration time
// and returns its subject.
func (s *Signer) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
