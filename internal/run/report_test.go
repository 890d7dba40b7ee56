// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package run

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/subcommands"

	"go.chromium.org/wasmtest/internal/runner"
)

func TestExitStatus(t *testing.T) {
	trap := runner.NewTrap(runner.StackOverflow, "Detected stack-buffer-overflow.", "")
	for _, tc := range []struct {
		name string
		res  *Result
		err  error
		want subcommands.ExitStatus
	}{
		{"passed", &Result{Outcome: &runner.Outcome{Passed: true}}, nil, subcommands.ExitSuccess},
		{"failed", &Result{Outcome: &runner.Outcome{Passed: false}}, nil, subcommands.ExitFailure},
		{"trap", &Result{Outcome: &runner.Outcome{Passed: false, Trap: trap}}, nil, ExitTrap},
		{"trap with zero exit", &Result{Outcome: &runner.Outcome{Passed: true, Trap: trap}}, nil, ExitTrap},
		{"listed", &Result{TestCases: []string{"a/b"}}, nil, subcommands.ExitSuccess},
		{"validation", nil, &ValidationError{msg: "bad"}, subcommands.ExitUsageError},
		{"error", nil, errors.New("boom"), subcommands.ExitFailure},
	} {
		if got := ExitStatus(tc.res, tc.err); got != tc.want {
			t.Errorf("%s: ExitStatus = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestReportTrapFrames(t *testing.T) {
	trap := runner.NewTrap(runner.StackOverflow, "Error: Detected stack-buffer-overflow.",
		"$s4Test3fooyyF@http://127.0.0.1:8080/+WebAssembly.instantiate:42\n")
	var buf bytes.Buffer
	Report(&buf, &Result{Outcome: &runner.Outcome{Trap: trap}}, nil)
	const want = `Runtime trap: stack-buffer-overflow
Error: Detected stack-buffer-overflow.
Test.foo() -> ()
    at 42 (webassembly)
`
	if got := buf.String(); got != want {
		t.Errorf("Report wrote %q; want %q", got, want)
	}
}

func TestReportTrapRaw(t *testing.T) {
	trap := runner.NewTrap(runner.StackOverflow, "Detected stack-buffer-overflow.", "opaque crash text\n")
	var buf bytes.Buffer
	ReportTrap(&buf, trap)
	const want = "Runtime trap: stack-buffer-overflow\nDetected stack-buffer-overflow.\nopaque crash text\n"
	if got := buf.String(); got != want {
		t.Errorf("ReportTrap wrote %q; want %q", got, want)
	}
}

func TestReportOutcome(t *testing.T) {
	for _, tc := range []struct {
		passed bool
		want   string
	}{
		{true, "All tests passed\n"},
		{false, "Tests failed\n"},
	} {
		var buf bytes.Buffer
		Report(&buf, &Result{Outcome: &runner.Outcome{Passed: tc.passed}}, nil)
		if got := buf.String(); got != tc.want {
			t.Errorf("Report(passed=%v) wrote %q; want %q", tc.passed, got, tc.want)
		}
	}
}

func TestReportValidationError(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, nil, &ValidationError{msg: "No prebuilt binary found at /x.wasm"})
	if got, want := buf.String(), "No prebuilt binary found at /x.wasm\n"; got != want {
		t.Errorf("Report wrote %q; want %q", got, want)
	}
}
