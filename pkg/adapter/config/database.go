// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/libcat/pkg/adapter/db/postgres"
	"github.com/momeni/libcat/pkg/core/repo"
)

// Database contains the database related configuration settings.
// Either the URL or the Host, Port, Name, and PassDir fields must be
// given. The URL (which is usually taken from the DATABASE_URL
// environment variable) takes precedence.
type Database struct {
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like libcat
	PassDir string `yaml:"pass-dir"` // path of the .pgpass file dir

	URL string `yaml:"url,omitempty"` // complete connection string
}

// ValidateAndNormalize checks that enough connection information is
// provided and sets the default 5432 port if it is missing.
func (d *Database) ValidateAndNormalize() error {
	if d.URL != "" {
		return nil
	}
	switch {
	case d.Host == "":
		return errors.New("database host is required")
	case d.Name == "":
		return errors.New("database name is required")
	case d.PassDir == "":
		return errors.New("database pass-dir is required")
	case d.Port < 0 || d.Port > 65535:
		return fmt.Errorf("invalid database port: %d", d.Port)
	case d.Port == 0:
		d.Port = 5432
	}
	return nil
}

// ConnectionPool creates a database connection pool for the r role.
// The role is ignored if the d.URL connection string is configured.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	u := d.URL
	if u == "" {
		path := filepath.Join(d.PassDir, ".pgpass")
		var err error
		if u, err = d.ConnectionURL(r, path); err != nil {
			return nil, fmt.Errorf("using %q pass-file: %w", path, err)
		}
	}
	p, err := postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", d.Name, err)
	}
	return p, nil
}

// ConnectionURL returns the database connection URL embedding the
// host, port, r role name, database name, and password value. The
// password is read from the path file which may contain empty or
// `#`-commented lines in addition to the password specifying lines
// which should conform with the pgpass files format:
//
//	host:port:dbname:role:password
func (d Database) ConnectionURL(
	r repo.Role, path string,
) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line for %s", r)
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}
