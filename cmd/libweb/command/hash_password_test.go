// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"bytes"
	"strings"
	"testing"

	"github.com/momeni/libcat/pkg/adapter/hash/scram"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("s3cret\r\nignored\n"))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	require.NoError(t, hashPassword(cmd, nil))

	h := strings.TrimSuffix(out.String(), "\n")
	assert.True(t, strings.HasPrefix(h, "SCRAM-SHA-256$15000:"), h)
	ok, err := scram.SHA256().Verify("s3cret", h)
	require.NoError(t, err)
	assert.True(t, ok, "printed hash must accept the password")

	for name, in := range map[string]string{
		"no input":       "",
		"empty password": "\n",
	} {
		cmd.SetIn(strings.NewReader(in))
		assert.Error(t, hashPassword(cmd, nil), name)
	}
}

func TestHashAndCheck(t *testing.T) {
	h, err := hashAndCheck(scram.SHA1(), "pw", 4096)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "SCRAM-SHA-1$4096:"), h)

	_, err = hashAndCheck(scram.SHA256(), "pw", 100)
	assert.Error(t, err, "too few iterations")
}
