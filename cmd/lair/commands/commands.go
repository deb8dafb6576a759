// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/lairchat/lair-go/cmd/lair/cli"
	"github.com/lairchat/lair-go/lib/version"
)

// Root builds and returns the complete lair CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "lair",
		Description: `Lair Chat command-line client.

Talk to a Lair Chat server: register and authenticate users, manage
rooms, send messages, and follow a room live with the watch command.

Authenticated commands log in with --user and a password prompt (or
--password-file). Set LAIR_TOKEN and LAIR_USER to reuse an access
token from a previous 'lair login' instead.`,
		Subcommands: []*cli.Command{
			healthCommand(),
			registerCommand(),
			loginCommand(),
			profileCommand(),
			roomsCommand(),
			sendCommand(),
			watchCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ []string) error {
					fmt.Printf("lair %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
