// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the lair CLI.
//
// Configuration is loaded from a single file specified by either the
// LAIR_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search; when no file is specified the built-in
// defaults apply, so the client works against a local server with no
// config file at all.
//
// Variable expansion is performed on string fields after loading:
// ${VAR} and ${VAR:-default} patterns are expanded from the
// environment. No other environment variables override config values.
// This keeps the effective configuration deterministic and auditable.
//
// Key exports:
//
//   - [Config] -- server URL, request timeout, watch polling defaults
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other lair-go packages.
package config
