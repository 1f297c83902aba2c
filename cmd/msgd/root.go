// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the msg CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msgd",
		Short: "msg - account, session, and chat messaging service",
		Long: `msgd runs the msg service: account registration and login,
signed session tokens, and membership-gated chats storing
client-encrypted messages in PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
