// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/momeni/libcat/pkg/adapter/config/settings"
	"github.com/momeni/libcat/pkg/adapter/hash/scram"
	"github.com/momeni/libcat/pkg/adapter/token/jwt"
	"github.com/momeni/libcat/pkg/core/repo"
	"github.com/momeni/libcat/pkg/core/usecase/authuc"
	"github.com/momeni/libcat/pkg/core/usecase/booksuc"
	"github.com/momeni/libcat/pkg/core/usecase/loansuc"
)

// Auth contains the administrators credentials and the bearer tokens
// settings. Passwords are kept as SCRAM-SHA-256 hash strings which
// can be generated by the "libweb hash-password" command.
type Auth struct {
	Admins      []Admin
	TokenSecret string             `yaml:"token-secret"` // HS256 key
	TokenTTL    *settings.Duration `yaml:"token-ttl,omitempty"`
}

// Admin is one administrator credentials.
type Admin struct {
	Username     string
	PasswordHash string `yaml:"password-hash"`
}

// ValidateAndNormalize checks the administrators list and token
// secret and sets the default 24 hours token TTL.
func (a *Auth) ValidateAndNormalize() error {
	seen := make(map[string]bool, len(a.Admins))
	for i, adm := range a.Admins {
		switch {
		case adm.Username == "":
			return fmt.Errorf("admins[%d] has no username", i)
		case adm.PasswordHash == "":
			return fmt.Errorf("admin %q has no password-hash", adm.Username)
		case seen[adm.Username]:
			return fmt.Errorf("admin %q is repeated", adm.Username)
		}
		seen[adm.Username] = true
	}
	if a.TokenSecret == "" {
		return errors.New("token-secret is required")
	}
	defaultTTL := settings.Duration(24 * time.Hour)
	settings.OverwriteNil(&a.TokenTTL, &defaultTTL)
	if *a.TokenTTL <= 0 {
		return fmt.Errorf("token-ttl (%s) must be positive", *a.TokenTTL.Marshal())
	}
	return nil
}

// NewAuthUseCase instantiates the authentication use case which checks
// the configured administrators and signs tokens by TokenSecret.
func (c *Config) NewAuthUseCase() (*authuc.UseCase, error) {
	signer, err := jwt.New(c.Auth.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token signer: %w", err)
	}
	admins := make(map[string]string, len(c.Auth.Admins))
	for _, adm := range c.Auth.Admins {
		admins[adm.Username] = adm.PasswordHash
	}
	return authuc.New(
		admins, scram.SHA256(), signer,
		authuc.WithTokenTTL(time.Duration(*c.Auth.TokenTTL)),
	)
}

// Usecases contains the configuration settings of the use cases.
type Usecases struct {
	Loans Loans // loans use case related settings
	Books Books // books use case related settings
}

// Loans contains the configuration settings for the loans use case.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized.
type Loans struct {
	// TimeZone is an IANA time zone name, like Asia/Tehran, which
	// determines the current calendar date for the days remaining
	// and overdue computations. UTC is used by default.
	TimeZone string `yaml:"time-zone,omitempty"`

	// MaxLoanPeriod is the longest acceptable distance between the
	// borrow and due dates. A missing value accepts all periods.
	MaxLoanPeriod *settings.Duration `yaml:"max-loan-period,omitempty"`
	// MinMaxLoanPeriod is the inclusive minimum acceptable value
	// for the MaxLoanPeriod setting.
	MinMaxLoanPeriod *settings.Duration `yaml:"max-loan-period-minimum,omitempty"`
	// MaxMaxLoanPeriod is the inclusive maximum acceptable value
	// for the MaxLoanPeriod setting.
	MaxMaxLoanPeriod *settings.Duration `yaml:"max-loan-period-maximum,omitempty"`

	// AllowDuplicates disables the check which rejects a second open
	// loan of one book for the same borrower.
	AllowDuplicates *bool `yaml:"allow-duplicates,omitempty"`

	location *time.Location
}

// Books contains the configuration settings for the books use case.
type Books struct {
	FeaturedCount *int `yaml:"featured-count,omitempty"` // default 6
}

// ValidateAndNormalize validates the use cases settings and loads the
// configured time zone.
func (u *Usecases) ValidateAndNormalize() error {
	l := &u.Loans
	settings.Nil2Zero(&l.AllowDuplicates)
	if err := settings.VerifyRange(
		&l.MaxLoanPeriod, l.MinMaxLoanPeriod, l.MaxMaxLoanPeriod,
	); err != nil {
		return fmt.Errorf(
			"VerifyRange(max loan period=%v, minb=%v, maxb=%v): %w",
			err.Value, l.MinMaxLoanPeriod, l.MaxMaxLoanPeriod, err,
		)
	}
	if l.MaxLoanPeriod != nil && *l.MaxLoanPeriod <= 0 {
		return errors.New("max-loan-period must be positive")
	}
	loc, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		return fmt.Errorf("loading %q time zone: %w", l.TimeZone, err)
	}
	l.location = loc
	if n := u.Books.FeaturedCount; n != nil && *n <= 0 {
		return fmt.Errorf("featured-count (%d) must be positive", *n)
	}
	return nil
}

// Location returns the configured time zone. It is valid only after
// the ValidateAndNormalize call.
func (l Loans) Location() *time.Location {
	if l.location == nil {
		return time.UTC
	}
	return l.location
}

// NewLoansUseCase instantiates a new loans use case based on the
// loans settings.
func (c *Config) NewLoansUseCase(
	p repo.Pool, b repo.Books, l repo.Loans,
) (*loansuc.UseCase, error) {
	s := c.Usecases.Loans
	opts := []loansuc.Option{loansuc.WithLocation(s.Location())}
	if s.MaxLoanPeriod != nil {
		opts = append(opts, loansuc.WithMaxLoanPeriod(
			time.Duration(*s.MaxLoanPeriod),
		))
	}
	if s.AllowDuplicates != nil && *s.AllowDuplicates {
		opts = append(opts, loansuc.WithDuplicateLoans())
	}
	return loansuc.New(p, b, l, opts...)
}

// NewBooksUseCase instantiates a new books use case based on the
// books settings. The loans time zone is used for the dashboard.
func (c *Config) NewBooksUseCase(
	p repo.Pool, b repo.Books, l repo.Loans,
) (*booksuc.UseCase, error) {
	opts := []booksuc.Option{
		booksuc.WithLocation(c.Usecases.Loans.Location()),
	}
	if n := c.Usecases.Books.FeaturedCount; n != nil {
		opts = append(opts, booksuc.WithFeaturedCount(*n))
	}
	return booksuc.New(p, b, l, opts...)
}
