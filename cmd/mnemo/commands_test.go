// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestEngine wires a full engine and serves its handler over httptest,
// returning the address client commands should target.
func startTestEngine(t *testing.T) string {
	t.Helper()

	engine, err := WireEngine(testConfig())
	require.NoError(t, err)

	ts := httptest.NewServer(engine.Server.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { engine.Close() })

	return strings.TrimPrefix(ts.URL, "http://")
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--server", addr}, args...))

	err := root.Execute()
	return buf.String(), err
}

func TestPostCommand(t *testing.T) {
	addr := startTestEngine(t)

	out, err := runCommand(t, addr, "post", "alice", "hello there")
	require.NoError(t, err)
	assert.Contains(t, out, "session alice (version 1)")
	assert.Contains(t, out, "hello there")
}

func TestPostCommand_Role(t *testing.T) {
	addr := startTestEngine(t)

	_, err := runCommand(t, addr, "post", "alice", "hi")
	require.NoError(t, err)

	out, err := runCommand(t, addr, "post", "alice", "--role", "assistant", "hello, how can I help?")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant")
}

func TestPostCommand_InvalidRole(t *testing.T) {
	addr := startTestEngine(t)

	_, err := runCommand(t, addr, "post", "alice", "--role", "wizard", "hi")
	require.Error(t, err)
}

func TestSessionShowCommand(t *testing.T) {
	addr := startTestEngine(t)

	_, err := runCommand(t, addr, "post", "alice", "first message")
	require.NoError(t, err)

	out, err := runCommand(t, addr, "session", "show", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "first message")
}

func TestSessionShowCommand_NotFound(t *testing.T) {
	addr := startTestEngine(t)

	_, err := runCommand(t, addr, "session", "show", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSessionDeleteCommand(t *testing.T) {
	addr := startTestEngine(t)

	_, err := runCommand(t, addr, "post", "alice", "hello")
	require.NoError(t, err)

	out, err := runCommand(t, addr, "session", "delete", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session: alice")

	_, err = runCommand(t, addr, "session", "show", "alice")
	require.Error(t, err)
}

func TestCheckpointCommands(t *testing.T) {
	addr := startTestEngine(t)

	_, err := runCommand(t, addr, "post", "alice", "one")
	require.NoError(t, err)
	_, err = runCommand(t, addr, "post", "alice", "two")
	require.NoError(t, err)

	out, err := runCommand(t, addr, "checkpoint", "save", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved checkpoint alice@2")

	_, err = runCommand(t, addr, "post", "alice", "three")
	require.NoError(t, err)

	out, err = runCommand(t, addr, "checkpoint", "list", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@2")

	out, err = runCommand(t, addr, "checkpoint", "restore", "alice", "--version", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "session alice (version 2)")
	assert.NotContains(t, out, "three")
}

func TestCheckpointListCommand_Empty(t *testing.T) {
	addr := startTestEngine(t)

	out, err := runCommand(t, addr, "checkpoint", "list", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No checkpoints")
}

func TestStatusCommand(t *testing.T) {
	addr := startTestEngine(t)

	out, err := runCommand(t, addr, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}
