// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/chat"
	"github.com/lairchat/lair-go/cmd/lair/cli"
)

func watchCommand() *cli.Command {
	var (
		conn     connection
		interval time.Duration
		limit    int
	)

	return &cli.Command{
		Name:    "watch",
		Summary: "Follow a room's messages live",
		Description: `Poll a room and print new messages as they arrive, one per line:

    [HH:MM:SS] author: content

Transient server errors are retried on the next poll; the command only
exits on Ctrl-C or when the session's credentials stop working.`,
		Usage: "lair watch [flags] [room-id]",
		Examples: []cli.Example{
			{
				Description: "Watch a room with the default 2s poll interval",
				Command:     "lair watch general",
			},
			{
				Description: "Watch the configured default room, polling faster",
				Command:     "lair watch --interval 500ms",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			conn.addFlags(flagSet, true)
			flagSet.DurationVar(&interval, "interval", 0, "poll interval (defaults to watch.interval from config)")
			flagSet.IntVar(&limit, "limit", 0, "messages fetched per poll (defaults to watch.limit from config)")
			return flagSet
		},
		Run: func(args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, cleanup, err := conn.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			roomID, err := conn.roomArgument(args)
			if err != nil {
				return err
			}

			if interval == 0 {
				interval = conn.cfg.Watch.Interval
			}
			if limit == 0 {
				limit = conn.cfg.Watch.Limit
			}

			watcher, err := session.WatchRoom(chat.WatchOptions{
				RoomID:   roomID,
				Interval: interval,
				Limit:    limit,
				Logger:   cli.NewCommandLogger(),
				OnMessage: func(message chat.Message) {
					fmt.Println(formatMessage(message))
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "watching %s (poll every %v, Ctrl-C to stop)\n", roomID, interval)

			select {
			case <-ctx.Done():
				fmt.Fprintln(os.Stderr, "stopping...")
				if err := watcher.Stop(); err != nil {
					if errors.Is(err, chat.ErrShutdownTimeout) {
						fmt.Fprintln(os.Stderr, "poll did not finish in time, abandoning it")
						return nil
					}
					return err
				}
				return nil
			case <-watcher.Done():
				// The watcher only stops itself when the session died.
				return fmt.Errorf("watch ended: %w", watcher.Err())
			}
		},
	}
}

// formatMessage renders a message as "[HH:MM:SS] author: content".
// Timestamps the server sends in an unexpected format are printed
// verbatim rather than dropped.
func formatMessage(message chat.Message) string {
	stamp := message.Timestamp
	if messageTime, ok := message.Time(); ok {
		stamp = messageTime.Local().Format("15:04:05")
	}
	return fmt.Sprintf("[%s] %s: %s", stamp, message.Author, message.Content)
}
