// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/momeni/libcat/pkg/adapter/hash/scram"
	corescram "github.com/momeni/libcat/pkg/core/scram"
	"github.com/spf13/cobra"
)

var hashIters int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Compute a SCRAM-SHA-256 hash for an administrator password",
	Long: `Compute a SCRAM-SHA-256 hash for an administrator password
which is read from the first line of the standard input. The printed
hash string may be put in the auth.admins[].password-hash item of the
config file, so the plaintext password is never stored.`,
	RunE: hashPassword,
	Args: cobra.NoArgs,
}

func hashPassword(cmd *cobra.Command, _ []string) error {
	s := bufio.NewScanner(cmd.InOrStdin())
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		return errors.New("no password is given")
	}
	pass := strings.TrimRight(s.Text(), "\r")
	if pass == "" {
		return errors.New("empty password")
	}
	h, err := hashAndCheck(scram.SHA256(), pass, hashIters)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), h)
	return nil
}

// hashAndCheck hashes pass and verifies it against the new hash, so
// a printed hash string is known to accept pass.
func hashAndCheck(
	hv corescram.HashVerifier, pass string, iters int,
) (string, error) {
	h, err := hv.Hash(pass, "", iters)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	ok, err := hv.Verify(pass, h)
	switch {
	case err != nil:
		return "", fmt.Errorf("verifying hash: %w", err)
	case !ok:
		return "", errors.New("new hash does not accept the password")
	}
	return h, nil
}

func init() {
	hashPasswordCmd.Flags().IntVar(
		&hashIters, "iterations", 15000, "hashing iterations (min 4096)",
	)
	rootCmd.AddCommand(hashPasswordCmd)
}
