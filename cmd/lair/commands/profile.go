// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func profileCommand() *cli.Command {
	var conn connection

	return &cli.Command{
		Name:    "profile",
		Summary: "Show the authenticated user's profile",
		Usage:   "lair profile [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("profile", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			return flagSet
		},
		Run: func(args []string) error {
			ctx := context.Background()
			session, cleanup, err := conn.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := session.Profile(ctx)
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "ID:\t%s\n", user.ID)
			fmt.Fprintf(writer, "Username:\t%s\n", user.Username)
			fmt.Fprintf(writer, "Email:\t%s\n", user.Email)
			if user.DisplayName != "" {
				fmt.Fprintf(writer, "Display name:\t%s\n", user.DisplayName)
			}
			return writer.Flush()
		},
	}
}
