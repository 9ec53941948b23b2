// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/server"
)

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <session> <content>",
		Short: "Append a message to a session",
		Long:  "Append a message to a session on a running mnemo server and print the resulting state.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPost,
	}

	cmd.Flags().String("role", "user", "message role (user, assistant, system)")

	return cmd
}

func runPost(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	content := strings.Join(args[1:], " ")
	role, _ := cmd.Flags().GetString("role")

	client := newEngineClient()

	var state server.StateView
	err := client.postJSON(sessionPath(sessionID, "/messages"), map[string]string{
		"role":    role,
		"content": content,
	}, &state)
	if err != nil {
		return err
	}

	printState(cmd.OutOrStdout(), &state)
	return nil
}

// printState renders a session state for terminal output.
func printState(w io.Writer, state *server.StateView) {
	fmt.Fprintf(w, "session %s (version %d)\n", state.SessionID, state.Version)
	if state.Summary != "" {
		fmt.Fprintf(w, "summary: %s\n", state.Summary)
	}
	for _, m := range state.Messages {
		fmt.Fprintf(w, "%4d  %-9s %s\n", m.Seq, m.Role, m.Content)
	}
}
