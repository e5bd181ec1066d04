// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authuc contains the authentication UseCase which lets the
// administrators log in with a username and password and obtain
// a bearer token for the admin REST APIs.
package authuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/momeni/libcat/pkg/core/cerr"
	"github.com/momeni/libcat/pkg/core/log"
	"github.com/momeni/libcat/pkg/core/scram"
)

// ErrInvalidCredentials is reported (wrapped by cerr.Authentication)
// for both unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is reported (wrapped by cerr.Authentication) when
// a bearer token is missing, malformed, expired, or forged.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and parses signed bearer tokens.
type Tokens interface {
	// Issue creates a token for the subject which expires after ttl.
	Issue(subject string, ttl time.Duration) (string, error)

	// Parse validates the token and returns its subject.
	Parse(token string) (subject string, err error)
}

// UseCase represents an authentication use case. It holds the known
// administrators and their password hash strings.
type UseCase struct {
	admins   map[string]string // username to SCRAM hash string
	decoy    string            // verified for unknown usernames
	verifier scram.Verifier
	tokens   Tokens

	tokenTTL time.Duration
}

// New instantiates an authentication use case. The admins map keys
// are usernames and its values are their password hash strings, as
// created by a scram.Hasher.
func New(
	admins map[string]string,
	v scram.Verifier,
	t Tokens,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		admins:   admins,
		decoy:    decoyHash(admins),
		verifier: v,
		tokens:   t,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.tokenTTL == 0 {
		uc.tokenTTL = 24 * time.Hour
	}
	return uc, nil
}

// Login verifies the username and password and returns a new token.
func (auth *UseCase) Login(
	ctx context.Context, username, password string,
) (string, error) {
	if password == "" {
		log.Warn(ctx, "login is rejected", slog.String("user", username))
		return "", cerr.Authentication(ErrInvalidCredentials)
	}
	hash, found := auth.admins[username]
	if !found {
		// same hashing cost as a known username with a wrong password
		_, _ = auth.verifier.Verify(password, auth.decoy)
		log.Warn(ctx, "login is rejected", slog.String("user", username))
		return "", cerr.Authentication(ErrInvalidCredentials)
	}
	ok, err := auth.verifier.Verify(password, hash)
	if err != nil {
		return "", fmt.Errorf("verifying %q password: %w", username, err)
	}
	if !ok {
		log.Warn(ctx, "login is rejected", slog.String("user", username))
		return "", cerr.Authentication(ErrInvalidCredentials)
	}
	token, err := auth.tokens.Issue(username, auth.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	log.Info(ctx, "admin logged in", slog.String("user", username))
	return token, nil
}

// decoyHash picks the hash of the first username in the sorted order,
// so unknown usernames are verified with the same iterations count as
// a configured administrator.
func decoyHash(admins map[string]string) string {
	names := make([]string, 0, len(admins))
	for name := range admins {
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return admins[names[0]]
}

// Verify validates the token and returns its username. Tokens of
// administrators which are removed from the configuration are
// rejected too.
func (auth *UseCase) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", cerr.Authentication(ErrInvalidToken)
	}
	username, err := auth.tokens.Parse(token)
	if err != nil {
		log.Debug(ctx, "token is rejected", log.Err("err", err))
		return "", cerr.Authentication(ErrInvalidToken)
	}
	if _, found := auth.admins[username]; !found {
		return "", cerr.Authentication(ErrInvalidToken)
	}
	return username, nil
}

// Option is a functional option for the authentication use case.
type Option func(uc *UseCase) error

// WithTokenTTL option configures the validity period of the issued
// tokens. The default TTL is 24 hours.
func WithTokenTTL(ttl time.Duration) Option {
	return func(uc *UseCase) error {
		if ttl <= 0 {
			return fmt.Errorf("ttl (%s) is not positive", ttl)
		}
		uc.tokenTTL = ttl
		return nil
	}
}
