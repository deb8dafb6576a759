// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/lairchat/lair-go/chat"
	"github.com/lairchat/lair-go/cmd/lair/cli"
	"github.com/lairchat/lair-go/lib/config"
)

// Environment variables for reusing an access token obtained from
// 'lair login' instead of authenticating on every command.
const (
	tokenEnvVar = "LAIR_TOKEN"
	userEnvVar  = "LAIR_USER"
)

// connection holds the flags shared by every command that talks to a
// server, plus the loaded configuration.
type connection struct {
	server       string
	configPath   string
	user         string
	passwordFile string

	cfg *config.Config
}

// addFlags registers the shared connection flags on a command's flag
// set. Commands that never authenticate (health) pass auth=false to
// omit the credential flags.
func (c *connection) addFlags(flagSet *pflag.FlagSet, auth bool) {
	flagSet.StringVar(&c.server, "server", "", "server base URL (overrides config)")
	flagSet.StringVar(&c.configPath, "config", "", "config file path (overrides "+config.EnvVar+")")
	if auth {
		flagSet.StringVar(&c.user, "user", "", "username or email to log in as")
		flagSet.StringVar(&c.passwordFile, "password-file", "", "read the password from this file instead of prompting (\"-\" for stdin)")
	}
}

// load resolves the configuration: explicit --config path, then the
// LAIR_CONFIG environment variable, then built-in defaults. The
// --server flag overrides whatever the config says.
func (c *connection) load() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if c.server != "" {
		cfg.ServerURL = c.server
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	c.cfg = cfg
	return nil
}

// client builds an API client from the loaded configuration.
func (c *connection) client() (*chat.Client, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	return chat.NewClient(chat.ClientConfig{
		ServerURL:  c.cfg.ServerURL,
		HTTPClient: &http.Client{Timeout: c.cfg.RequestTimeout},
		Logger:     cli.NewCommandLogger(),
	})
}

// session builds a client and establishes an authenticated session.
//
// If LAIR_TOKEN is set (with LAIR_USER naming its owner), the token is
// reused directly. Otherwise the command logs in with --user and a
// password prompt, and the returned cleanup logs the ephemeral session
// out again so the server is not left holding one-shot tokens.
func (c *connection) session(ctx context.Context) (chat.Session, func(), error) {
	client, err := c.client()
	if err != nil {
		return nil, nil, err
	}

	if token := os.Getenv(tokenEnvVar); token != "" {
		username := os.Getenv(userEnvVar)
		if username == "" {
			return nil, nil, fmt.Errorf("%s is set but %s is not", tokenEnvVar, userEnvVar)
		}
		userSession, err := client.SessionFromToken(chat.User{Username: username}, token)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			userSession.Close()
			client.CloseIdleConnections()
		}
		return userSession, cleanup, nil
	}

	if c.user == "" {
		return nil, nil, fmt.Errorf("--user is required (or set %s and %s)", tokenEnvVar, userEnvVar)
	}

	password, err := cli.ReadPassword(c.passwordFile)
	if err != nil {
		return nil, nil, err
	}
	defer password.Close()

	userSession, err := client.Login(ctx, c.user, password)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := userSession.Logout(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: logout failed: %v\n", err)
		}
		userSession.Close()
		client.CloseIdleConnections()
	}
	return userSession, cleanup, nil
}

// roomArgument resolves the room for commands that take an optional
// room ID argument, falling back to the configured default room.
func (c *connection) roomArgument(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if c.cfg != nil && c.cfg.DefaultRoom != "" {
		return c.cfg.DefaultRoom, nil
	}
	return "", fmt.Errorf("room ID required (no default_room configured)")
}
