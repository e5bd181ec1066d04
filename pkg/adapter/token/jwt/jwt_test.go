// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/momeni/libcat/pkg/core/usecase/authuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

var _ authuc.Tokens = (*Signer)(nil)

func TestIssueAndParse(t *testing.T) {
	s, err := New(secret)
	require.NoError(t, err)
	token, err := s.Issue("admin", time.Hour)
	require.NoError(t, err)

	sub, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)

	_, err = s.Parse(token + "x")
	assert.Error(t, err, "corrupted signature")

	other, err := New(secret + "!")
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.Error(t, err, "another key")
}

func TestExpiredToken(t *testing.T) {
	s, err := New(secret)
	require.NoError(t, err)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	token, err := s.Issue("admin", time.Hour)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = s.Parse(token)
	assert.NoError(t, err)

	s.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestRejectedAlgorithms(t *testing.T) {
	s, err := New(secret)
	require.NoError(t, err)
	claims := gojwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "admin",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Parse(none)
	assert.Error(t, err, "alg=none")

	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).
		SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = s.Parse(hs512)
	assert.Error(t, err, "alg=HS512")

	_, err = New("short")
	assert.Error(t, err)
}
