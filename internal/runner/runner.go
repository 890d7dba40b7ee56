// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runner defines the contract shared by all test bundle runners and
// the process and output handling they have in common.
package runner

import (
	"context"
	"fmt"

	"go.chromium.org/wasmtest/internal/shutil"
	"go.chromium.org/wasmtest/internal/symbolize"
)

// Runner runs a test bundle in one execution environment.
type Runner interface {
	// ListTestCases returns names of the test cases in the bundle without
	// running them.
	ListTestCases(ctx context.Context) ([]string, error)
	// Run runs the selected test cases, streaming their output, and returns
	// once the bundle has finished. Test failures are reported through
	// Outcome; errors are returned only if the bundle could not be run.
	Run(ctx context.Context, sel Selection) (*Outcome, error)
}

// Selection selects the test cases to run.
type Selection struct {
	// ListOnly requests listing test cases instead of running them.
	ListOnly bool
	// TestCases are names of test cases to run. If empty, all are run.
	TestCases []string
}

// Outcome is the result of running a bundle.
type Outcome struct {
	// Passed is true if the bundle exited successfully and reported no
	// failures.
	Passed bool
	// RawOutput is everything the bundle printed.
	RawOutput string
	// Trap is set if the runtime detected a memory-safety violation. It
	// takes precedence over Passed.
	Trap *Trap
}

// SpawnError is returned when the runtime process could not be started.
type SpawnError struct {
	// Cmd is the command line that was attempted.
	Cmd []string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", shutil.EscapeSlice(e.Cmd), e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TrapKind is a kind of runtime trap.
type TrapKind int

const (
	// StackOverflow is reported by the stack sanitizer.
	StackOverflow TrapKind = iota
)

func (k TrapKind) String() string {
	switch k {
	case StackOverflow:
		return "stack-buffer-overflow"
	default:
		return fmt.Sprintf("TrapKind(%d)", int(k))
	}
}

// Trap describes a memory-safety violation detected while running a bundle.
type Trap struct {
	Kind TrapKind
	// Message is the line reporting the trap.
	Message string
	// RawTrace is the crash text following Message as printed by the
	// runtime.
	RawTrace string
	// Frames is the symbolized form of RawTrace. It is empty if no frames
	// were recognized.
	Frames []symbolize.StackTraceItem
}

// NewTrap returns a Trap with frames parsed from rawTrace.
func NewTrap(kind TrapKind, message, rawTrace string) *Trap {
	return &Trap{
		Kind:     kind,
		Message:  message,
		RawTrace: rawTrace,
		Frames:   symbolize.Parse(rawTrace),
	}
}

func (t *Trap) Error() string {
	return fmt.Sprintf("runtime trap (%v): %s", t.Kind, t.Message)
}
