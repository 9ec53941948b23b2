// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether a mnemo server is running",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client := newEngineClient()

	var health struct {
		Status string `json:"status"`
	}
	if err := client.getJSON("/health", &health); err != nil {
		if errors.Is(err, ErrServerNotRunning) {
			_, werr := fmt.Fprintf(cmd.OutOrStdout(), "mnemo is not running at %s\n", viper.GetString("server.listen"))
			if werr != nil {
				return werr
			}
			return err
		}
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "mnemo at %s: %s\n", viper.GetString("server.listen"), health.Status)
	return err
}
