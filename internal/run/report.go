// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package run

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"go.chromium.org/wasmtest/internal/runner"
	"go.chromium.org/wasmtest/internal/symbolize"
)

// ExitTrap is the exit status used when a runtime trap was detected.
const ExitTrap subcommands.ExitStatus = 3

var (
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
)

// ExitStatus returns the process exit status for the result of Run.
func ExitStatus(res *Result, err error) subcommands.ExitStatus {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return subcommands.ExitUsageError
	case err != nil:
		return subcommands.ExitFailure
	case res == nil || res.Outcome == nil:
		return subcommands.ExitSuccess
	case res.Outcome.Trap != nil:
		return ExitTrap
	case !res.Outcome.Passed:
		return subcommands.ExitFailure
	default:
		return subcommands.ExitSuccess
	}
}

// Report writes a human-readable summary of the result of Run to w.
func Report(w io.Writer, res *Result, err error) {
	if err != nil {
		reportError(w, err)
		return
	}
	if res == nil {
		return
	}
	if res.Outcome == nil {
		for _, name := range res.TestCases {
			fmt.Fprintln(w, name)
		}
		return
	}
	switch {
	case res.Outcome.Trap != nil:
		ReportTrap(w, res.Outcome.Trap)
	case res.Outcome.Passed:
		green.Fprintln(w, "All tests passed")
	default:
		red.Fprintln(w, "Tests failed")
	}
}

func reportError(w io.Writer, err error) {
	var verr *ValidationError
	var berr *runner.SpawnError
	switch {
	case errors.As(err, &verr):
		red.Fprintln(w, verr.Error())
	case errors.As(err, &berr):
		red.Fprintln(w, berr.Error())
	default:
		red.Fprintf(w, "Error: %v\n", err)
	}
}

// ReportTrap writes a trap with its symbolized stack trace, or the raw crash
// text if no frames were recognized.
func ReportTrap(w io.Writer, trap *runner.Trap) {
	red.Fprintf(w, "Runtime trap: %v\n", trap.Kind)
	if trap.Message != "" {
		fmt.Fprintln(w, trap.Message)
	}
	if len(trap.Frames) > 0 {
		symbolize.WriteFrames(w, trap.Frames)
		return
	}
	if raw := strings.TrimRight(trap.RawTrace, "\n"); raw != "" {
		fmt.Fprintln(w, raw)
	}
}
