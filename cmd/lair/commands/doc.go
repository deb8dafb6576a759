// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the lair CLI command tree. Each subcommand
// lives in its own file and wires the chat client library to flags,
// config, and terminal output.
package commands
