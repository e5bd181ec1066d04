// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/momeni/libcat/pkg/adapter/config"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/booksrp"
	"github.com/momeni/libcat/pkg/adapter/db/postgres/loansrp"
	"github.com/momeni/libcat/pkg/adapter/restful/gin/loansrs"
	"github.com/momeni/libcat/pkg/core/repo"
	"github.com/spf13/cobra"
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Loans reporting actions",
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Print the overdue loans as JSON",
	Long: `Print the open loans which were due before today (in the
configured time zone) as a JSON array, having the same fields as the
GET /api/admin/orders API.`,
	RunE: listOverdue,
	Args: cobra.NoArgs,
}

func listOverdue(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	p, err := c.Database.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	loans, err := c.NewLoansUseCase(p, booksrp.New(), loansrp.New())
	if err != nil {
		return fmt.Errorf("creating loans use case: %w", err)
	}
	vv, err := loans.ListOverdueLoans(ctx)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(loansrs.SerOrders(vv), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling loans: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func init() {
	loansCmd.AddCommand(overdueCmd)
	rootCmd.AddCommand(loansCmd)
}
