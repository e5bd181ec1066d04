// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the libweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// The parsed and validated configurations are passed to their
// ultimate components as a series of individual params (for the
// mandatory items) and a series of functional options (for the
// optional items), so the use cases do not depend on this package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/momeni/libcat/pkg/adapter/config/settings"
	"github.com/momeni/libcat/pkg/adapter/restful/gin"
	"gopkg.in/yaml.v3"
)

// Environment variables which override the configuration file.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTokenSecret = "LIBCAT_TOKEN_SECRET"
)

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases. It is implemented
// with primitive fields or locally defined structs, so the file
// format is kept intact while other layers can change freely.
type Config struct {
	Database Database // PostgreSQL database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Auth     Auth     // Administrators and bearer tokens settings
	Usecases Usecases // Configuration settings for supported use cases
}

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized. Missing items are replaced by their
// default values by the ValidateAndNormalize method.
type Gin struct {
	Logger   *bool // Whether to register the access logger middleware
	Recovery *bool // Whether to register the panic recovery middleware
}

// Load reads the path configuration file, overrides its settings from
// the environment variables, and validates them. If a .env file exists
// in the working directory, its variables are loaded into the process
// environment beforehand (without overwriting the existing ones).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.OverrideFromEnv(os.LookupEnv)
	if err = c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// Parse unmarshals the data byte slice as a Config instance, without
// validating it. Unknown items are rejected, so typos are detected.
func Parse(data []byte) (*Config, error) {
	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)
	c := &Config{}
	if err := d.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return c, nil
}

// OverrideFromEnv replaces the settings which have a corresponding
// environment variable, as looked up by the lookup function.
func (c *Config) OverrideFromEnv(lookup func(string) (string, bool)) {
	if u, found := lookup(EnvDatabaseURL); found && u != "" {
		c.Database.URL = u
	}
	if s, found := lookup(EnvTokenSecret); found && s != "" {
		c.Auth.TokenSecret = s
	}
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It also replaces
// missing settings with their default values.
func (c *Config) ValidateAndNormalize() error {
	settings.Nil2Zero(&c.Gin.Logger)
	settings.Nil2Zero(&c.Gin.Recovery)
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Auth.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating auth settings: %w", err)
	}
	if err := c.Usecases.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating use cases settings: %w", err)
	}
	return nil
}

// MarshalYAML hides the secrets, so a Config may be logged or printed.
func (c *Config) MarshalYAML() (interface{}, error) {
	type plain Config // drops the MarshalYAML method
	cc := plain(*c)
	if cc.Database.URL != "" {
		cc.Database.URL = "<redacted>"
	}
	if cc.Auth.TokenSecret != "" {
		cc.Auth.TokenSecret = "<redacted>"
	}
	return &cc, nil
}

// NewEngine instantiates a gin engine having the access logger and
// panic recovery middlewares if they are enabled. Both of them log
// using the default slog logger.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 2)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger(slog.Default()))
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery(slog.Default()))
	}
	return gin.New(middlewares...)
}
