// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/server"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage sessions",
	}

	cmd.AddCommand(
		newSessionShowCmd(),
		newSessionDeleteCmd(),
	)

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show a session's live state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newEngineClient()

			var state server.StateView
			if err := client.getJSON(sessionPath(args[0], ""), &state); err != nil {
				return err
			}

			printState(cmd.OutOrStdout(), &state)
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session>",
		Short: "Delete a session and its checkpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newEngineClient()

			if err := client.deleteJSON(sessionPath(args[0], ""), nil); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted session: %s\n", args[0])
			return err
		},
	}
}
