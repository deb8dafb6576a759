// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func sendCommand() *cli.Command {
	var (
		conn connection
		room string
	)

	return &cli.Command{
		Name:    "send",
		Summary: "Send a message to a room",
		Description: `Send a message. Multiple arguments are joined with spaces, so the
message does not need shell quoting unless it contains characters the
shell would expand.`,
		Usage: "lair send --room <room-id> [flags] <message>...",
		Examples: []cli.Example{
			{
				Description: "Send to an explicit room",
				Command:     "lair send --room general hello from the CLI",
			},
			{
				Description: "Send to the configured default room",
				Command:     "lair send deploy finished",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("send", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			flagSet.StringVar(&room, "room", "", "room to send to (defaults to default_room from config)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("message required")
			}
			content := strings.Join(args, " ")
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("message must not be blank")
			}

			ctx := context.Background()
			session, cleanup, err := conn.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			roomID := room
			if roomID == "" {
				roomID, err = conn.roomArgument(nil)
				if err != nil {
					return err
				}
			}

			if err := session.SendMessage(ctx, roomID, content); err != nil {
				return err
			}
			fmt.Printf("sent to %s\n", roomID)
			return nil
		},
	}
}
