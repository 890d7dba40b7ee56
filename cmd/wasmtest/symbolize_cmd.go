// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/symbolize"
)

// symbolizeCmd implements subcommands.Command to support symbolizing crashes.
type symbolizeCmd struct {
	stdout io.Writer
	stdin  io.Reader
}

var _ = subcommands.Command(&symbolizeCmd{})

func (*symbolizeCmd) Name() string     { return "symbolize" }
func (*symbolizeCmd) Synopsis() string { return "symbolize crash text" }
func (*symbolizeCmd) Usage() string {
	return `Usage: symbolize <file>

Symbolize a stack trace printed by a browser or node to stdout, demangling
Swift symbols. Use "-" to read from stdin.

`
}

func (*symbolizeCmd) SetFlags(f *flag.FlagSet) {}

func (s *symbolizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(f.Args()) != 1 {
		fmt.Fprint(os.Stderr, s.Usage())
		return subcommands.ExitUsageError
	}

	path := f.Args()[0]
	var r io.Reader
	if path == "-" {
		r = s.stdin
		if r == nil {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(path)
		if err != nil {
			logging.Infof(ctx, "Failed to open %v: %v", path, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	n, err := symbolize.Symbolize(r, s.stdout)
	if err != nil {
		logging.Infof(ctx, "Failed to symbolize %v: %v", path, err)
		return subcommands.ExitFailure
	}
	logging.Debugf(ctx, "Symbolized %d frames", n)
	return subcommands.ExitSuccess
}
