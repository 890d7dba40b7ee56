// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"io"

	"github.com/google/subcommands"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/run"
)

// listCmd implements subcommands.Command to support listing tests.
type listCmd struct {
	cfg    *run.MutableConfig
	run    runFunc
	stdout io.Writer // where to write test names
	stderr io.Writer
}

var _ = subcommands.Command(&listCmd{})

// newListCmd returns a new listCmd that will write test names to stdout.
func newListCmd(stdout, stderr io.Writer) *listCmd {
	return &listCmd{
		cfg:    run.NewMutableConfig(run.ListTestsMode),
		run:    run.Run,
		stdout: stdout,
		stderr: stderr,
	}
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list tests" }
func (*listCmd) Usage() string {
	return `Usage: list [flag]...

Description:
    Lists test cases in the test bundle without running them, one per line.
    Equivalent to "test -list".

Flag:
`
}

func (lc *listCmd) SetFlags(f *flag.FlagSet) {
	lc.cfg.SetFlags(f)
}

func (lc *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Only warnings and errors accompany the list of names.
	logger := logging.NewSinkLogger(logging.LevelWarning, false, logging.NewWriterSink(lc.stderr))
	ctx = logging.AttachLoggerNoPropagation(ctx, logger)
	return execute(ctx, f, lc.cfg, lc.run, lc.stdout, lc.stderr)
}
