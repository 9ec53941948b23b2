// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func init() {
	// Mock keyring so tests never touch the real OS keyring.
	keyring.MockInit()
}

func runSecretCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"secret"}, args...))

	err := root.Execute()
	return buf.String(), err
}

func TestSecretSetListDelete(t *testing.T) {
	out, err := runSecretCommand(t, "set", "anthropic-api-key", "sk-test-123")
	require.NoError(t, err)
	assert.Contains(t, out, "keyring://mnemo/anthropic-api-key")

	out, err = runSecretCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic-api-key")

	out, err = runSecretCommand(t, "delete", "anthropic-api-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted secret: anthropic-api-key")

	out, err = runSecretCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No secrets stored.")
}

func TestSecretDelete_NotFound(t *testing.T) {
	_, err := runSecretCommand(t, "delete", "never-stored")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
