// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/chat"
	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func roomsCommand() *cli.Command {
	return &cli.Command{
		Name:    "rooms",
		Summary: "List, create, and join rooms",
		Subcommands: []*cli.Command{
			roomsListCommand(),
			roomsCreateCommand(),
			roomsJoinCommand(),
		},
	}
}

func roomsListCommand() *cli.Command {
	var conn connection

	return &cli.Command{
		Name:    "list",
		Summary: "List available rooms",
		Usage:   "lair rooms list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
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

			rooms, err := session.Rooms(ctx)
			if err != nil {
				return err
			}
			if len(rooms) == 0 {
				fmt.Println("no rooms")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tDESCRIPTION")
			for _, room := range rooms {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", room.ID, room.Name, room.Description)
			}
			return writer.Flush()
		},
	}
}

func roomsCreateCommand() *cli.Command {
	var (
		conn        connection
		description string
	)

	return &cli.Command{
		Name:    "create",
		Summary: "Create a new room",
		Usage:   "lair rooms create [flags] <name>",
		Examples: []cli.Example{
			{
				Description: "Create a room with a description",
				Command:     "lair rooms create --description \"Build breakage triage\" incidents",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			flagSet.StringVar(&description, "description", "", "optional room description")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one room name argument required")
			}

			ctx := context.Background()
			session, cleanup, err := conn.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			room, err := session.CreateRoom(ctx, chat.CreateRoomRequest{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created room %s (id %s)\n", room.Name, room.ID)
			return nil
		},
	}
}

func roomsJoinCommand() *cli.Command {
	var conn connection

	return &cli.Command{
		Name:    "join",
		Summary: "Join a room",
		Usage:   "lair rooms join [flags] <room-id>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("join", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one room ID argument required")
			}

			ctx := context.Background()
			session, cleanup, err := conn.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := session.JoinRoom(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("joined room %s\n", args[0])
			return nil
		},
	}
}
