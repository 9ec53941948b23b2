// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/server"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Save, list, and restore session checkpoints",
	}

	cmd.AddCommand(
		newCheckpointSaveCmd(),
		newCheckpointListCmd(),
		newCheckpointRestoreCmd(),
	)

	return cmd
}

func newCheckpointSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <session>",
		Short: "Save a checkpoint of the session's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newEngineClient()

			var saved struct {
				SessionID string `json:"session_id"`
				Version   int64  `json:"version"`
			}
			if err := client.postJSON(sessionPath(args[0], "/checkpoints"), nil, &saved); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved checkpoint %s@%d\n", saved.SessionID, saved.Version)
			return err
		},
	}
}

func newCheckpointListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <session>",
		Short: "List checkpoint versions for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newEngineClient()

			var listed struct {
				SessionID string  `json:"session_id"`
				Versions  []int64 `json:"versions"`
			}
			if err := client.getJSON(sessionPath(args[0], "/checkpoints"), &listed); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(listed.Versions) == 0 {
				_, err := fmt.Fprintf(out, "No checkpoints for session %s.\n", args[0])
				return err
			}
			for _, v := range listed.Versions {
				if _, err := fmt.Fprintf(out, "%s@%d\n", listed.SessionID, v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCheckpointRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <session>",
		Short: "Restore a session from a checkpoint",
		Long:  "Replace a session's live state with a saved checkpoint. Without --version the latest checkpoint is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetInt64("version")
			client := newEngineClient()

			var state server.StateView
			err := client.postJSON(sessionPath(args[0], "/restore"),
				map[string]int64{"version": version}, &state)
			if err != nil {
				return err
			}

			printState(cmd.OutOrStdout(), &state)
			return nil
		},
	}

	cmd.Flags().Int64("version", 0, "checkpoint version to restore (0 = latest)")

	return cmd
}
