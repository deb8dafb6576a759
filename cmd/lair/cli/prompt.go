// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/lairchat/lair-go/lib/secret"
)

// ReadPassword reads a password into protected memory. When
// passwordFile is non-empty the password comes from that file ("-"
// meaning stdin). Otherwise the user is prompted on the terminal with
// echo disabled; the transient prompt bytes are zeroed once the
// protected buffer holds the secret.
func ReadPassword(passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" {
		return secret.ReadFromPath(passwordFile)
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, fmt.Errorf("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return secret.NewFromBytes(passwordBytes)
}
