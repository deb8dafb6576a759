// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/chat"
	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func registerCommand() *cli.Command {
	var (
		conn  connection
		email string
	)

	return &cli.Command{
		Name:    "register",
		Summary: "Create a new account",
		Description: `Create a new account on the server. The password is prompted on
the terminal with echo disabled unless --password-file is given.`,
		Usage: "lair register --user <username> --email <address> [flags]",
		Examples: []cli.Example{
			{
				Description: "Register interactively",
				Command:     "lair register --user alice --email alice@example.com",
			},
			{
				Description: "Register non-interactively from a secrets file",
				Command:     "lair register --user bot --email bot@example.com --password-file /run/secrets/bot-password",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("register", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			flagSet.StringVar(&email, "email", "", "email address for the new account")
			return flagSet
		},
		Run: func(args []string) error {
			if conn.user == "" {
				return fmt.Errorf("--user is required")
			}
			if email == "" {
				return fmt.Errorf("--email is required")
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

			user, err := client.Register(context.Background(), chat.RegisterRequest{
				Username: conn.user,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Printf("registered %s (id %s)\n", user.Username, user.ID)
			return nil
		},
	}
}
