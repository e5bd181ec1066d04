// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the libweb
// program. Commands are organized using the cobra library.
// The root command starts the web server itself while the sub-commands
// manage the database schema, prepare the administrators password
// hashes, and report the overdue loans.
//
//	./libweb [-c /path/of/config.yaml] [-l :8080]  # start web server
//	./libweb db init [--dev] [-c /path/of/config.yaml]
//	./libweb hash-password [--iterations 15000] < password.txt
//	./libweb loans overdue [-c /path/of/config.yaml]
package command

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/libcat/pkg/adapter/config"
	"github.com/momeni/libcat/pkg/adapter/restful/gin"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/routes"
	"github.com/momeni/libcat/pkg/core/log"
	"github.com/momeni/libcat/pkg/core/repo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgPath    string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "libweb",
	Short: "A library catalog and borrowing records web service",
	Long: `A library catalog and borrowing records web service which
provides public book search and browse APIs and administrative APIs for
managing the books inventory and their loans, backed by PostgreSQL.
Lending and returning books are performed in single transactions, so
a book is never lent to two borrowers at the same time.
Administrative APIs require a bearer token which is obtained by logging
in with one of the administrators which are listed in the config file.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling configs: %w", err)
	}
	fmt.Printf("configs:\n%s\n", b)
	p, err := c.Database.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	var e *gin.Engine = c.Gin.NewEngine()
	if err = routes.Register(e, p, c); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	log.Info(ctx, "starting web server", log.Stringer("addr", addr(listenAddr)))
	if listenAddr == "" {
		err = e.Run()
	} else {
		err = e.Run(listenAddr)
	}
	if err != nil {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

// addr prints the listening address, as gin resolves it by default.
type addr string

func (a addr) String() string {
	if a != "" {
		return string(a)
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code is
// zero for success and one for any failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
	rootCmd.Flags().StringVarP(
		&listenAddr, "listen", "l", "",
		"listening address like :8080 (default is $PORT or :8080)",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
