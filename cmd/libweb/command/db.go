// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/libcat/pkg/adapter/config"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/schema"
	"github.com/momeni/libcat/pkg/core/log"
	"github.com/momeni/libcat/pkg/core/repo"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For a fresh installation in a development or production environment,
the init sub-command may be used.`,
}

var devData bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the books and loans tables",
	Long: `Create the books and loans tables and their indices, connecting
to the database with the admin role. The DML privileges on those tables
are granted to the libcat role which is used by the web server.
The database connection information are read from the config file.
Existing tables are kept intact, so init may be repeated safely.
The --dev flag inserts a few sample books too.`,
	RunE: initDB,
	Args: cobra.NoArgs,
}

func initDB(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	p, err := c.Database.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	var sizes map[string]int64
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		err := schema.Init(ctx, c, devData, string(repo.NormalRole))
		if err != nil {
			return err
		}
		sizes, err = schema.Sizes(ctx, c)
		return err
	})
	if err != nil {
		return fmt.Errorf("initializing DB: %w", err)
	}
	log.Info(
		ctx, "database is initialized",
		slog.Int64("books", sizes["books"]),
		slog.Int64("loans", sizes["loans"]),
	)
	return nil
}

func init() {
	initCmd.Flags().BoolVar(
		&devData, "dev", false, "insert development sample books",
	)
	dbCmd.AddCommand(initCmd)
	rootCmd.AddCommand(dbCmd)
}
