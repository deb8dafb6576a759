// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func loginCommand() *cli.Command {
	var (
		conn      connection
		showToken bool
	)

	return &cli.Command{
		Name:    "login",
		Summary: "Verify credentials and obtain an access token",
		Description: `Authenticate against the server. By default the session is logged
out again immediately — this just verifies the credentials work.

With --show-token the access token is printed to stdout and the
session is kept alive on the server. Export it as LAIR_TOKEN (with
LAIR_USER set to the username) and later commands will reuse it
instead of prompting for a password.`,
		Usage: "lair login --user <username> [flags]",
		Examples: []cli.Example{
			{
				Description: "Check that credentials work",
				Command:     "lair login --user alice",
			},
			{
				Description: "Obtain a token for scripted use",
				Command:     "export LAIR_TOKEN=$(lair login --user alice --show-token) LAIR_USER=alice",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			flagSet.BoolVar(&showToken, "show-token", false, "print the access token to stdout and keep the session alive")
			return flagSet
		},
		Run: func(args []string) error {
			if conn.user == "" {
				return fmt.Errorf("--user is required")
			}

			client, err := conn.client()
			if err != nil {
				return err
			}
			defer client.CloseIdleConnections()

			password, err := cli.ReadPassword(conn.passwordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			ctx := context.Background()
			session, err := client.Login(ctx, conn.user, password)
			if err != nil {
				return err
			}
			defer session.Close()

			if showToken {
				fmt.Println(session.Token())
				fmt.Fprintf(os.Stderr, "logged in as %s\n", session.User().Username)
				return nil
			}

			if err := session.Logout(ctx); err != nil {
				return err
			}
			fmt.Printf("credentials OK for %s\n", session.User().Username)
			return nil
		},
	}
}
