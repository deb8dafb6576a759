// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func healthCommand() *cli.Command {
	var conn connection

	return &cli.Command{
		Name:    "health",
		Summary: "Check server health",
		Description: `Query the server's health endpoint and report whether it is
accepting requests. Exits non-zero when the server is unreachable or
reports an unhealthy status.`,
		Usage: "lair health [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the configured server",
				Command:     "lair health",
			},
			{
				Description: "Check a specific server",
				Command:     "lair health --server http://chat.example.com:8082",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("health", pflag.ContinueOnError)
			conn.addFlags(flagSet, false)
			return flagSet
		},
		Run: func(args []string) error {
			client, err := conn.client()
			if err != nil {
				return err
			}
			defer client.CloseIdleConnections()

			status, err := client.Health(context.Background())
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}
			if !status.OK() {
				return fmt.Errorf("server unhealthy: status %q", status.Status)
			}
			fmt.Printf("server %s is healthy\n", conn.cfg.ServerURL)
			return nil
		},
	}
}
