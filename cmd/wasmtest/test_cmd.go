// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/google/subcommands"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/run"
)

// runFunc runs tests. It is replaced by unit tests.
type runFunc func(ctx context.Context, cfg *run.Config, deps *run.Deps) (*run.Result, error)

// testCmd implements subcommands.Command to support running tests.
type testCmd struct {
	cfg    *run.MutableConfig
	run    runFunc
	stdout io.Writer
	stderr io.Writer
}

var _ = subcommands.Command(&testCmd{})

func newTestCmd(stdout, stderr io.Writer) *testCmd {
	return &testCmd{
		cfg:    run.NewMutableConfig(run.RunTestsMode),
		run:    run.Run,
		stdout: stdout,
		stderr: stderr,
	}
}

func (*testCmd) Name() string     { return "test" }
func (*testCmd) Synopsis() string { return "build and run tests" }
func (*testCmd) Usage() string {
	return `Usage: test [flag]... [test case]...

Description:
    Builds the test bundle of the Swift package in the current directory, or
    uses the one given by -prebuilt-test-bundle-path, and runs it in the
    selected environment. Test cases are named "Suite/testName"; all are run
    if none are given.

    Exits with 0 if all tests passed, 1 if any failed or could not be run,
    2 for invalid flags and 3 if a runtime trap was detected.

Flag:
`
}

func (c *testCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
}

func (c *testCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, f, c.cfg, c.run, c.stdout, c.stderr)
}

// execute runs or lists tests as configured by cfg and reports the result.
func execute(ctx context.Context, f *flag.FlagSet, cfg *run.MutableConfig, fn runFunc, stdout, stderr io.Writer) subcommands.ExitStatus {
	cfg.TestCases = f.Args()

	if err := cfg.ApplyFile(f); err != nil {
		logging.Warningf(ctx, "Failed to read config: %v", err)
		return subcommands.ExitUsageError
	}
	if err := cfg.Validate(); err != nil {
		run.Report(stderr, nil, err)
		return run.ExitStatus(nil, err)
	}
	if len(cfg.TestCases) > 0 {
		logging.Debug(ctx, "Selected test cases: ", strings.Join(cfg.TestCases, " "))
	}

	res, err := fn(ctx, cfg.Freeze(), &run.Deps{Stdout: stdout, Stderr: stderr})
	if err != nil {
		run.Report(stderr, nil, err)
	} else {
		run.Report(stdout, res, nil)
	}
	return run.ExitStatus(res, err)
}
