// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Streams holds the writers runner output is copied to. Nil writers discard
// output.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// ExecBundle runs a runtime process described by args, streams its output
// and returns the outcome derived from its exit status and output.
func ExecBundle(ctx context.Context, args []string, dir string, s Streams) (*Outcome, error) {
	m := NewMonitor()
	stdout := m.Writer(orDiscard(s.Stdout))
	stderr := m.Writer(orDiscard(s.Stderr))

	exitOK, err := RunProcess(ctx, args, dir, stdout, stderr)
	stdout.Close()
	stderr.Close()
	if err != nil {
		return nil, err
	}
	return m.Outcome(exitOK), nil
}

// ListWithProcess runs a runtime process in listing mode and returns the test
// names it printed.
func ListWithProcess(ctx context.Context, args []string, dir string) ([]string, error) {
	out, err := ExecBundle(ctx, args, dir, Streams{})
	if err != nil {
		return nil, err
	}
	if !out.Passed {
		return nil, errors.Errorf("listing test cases failed: %s", out.RawOutput)
	}
	return ParseTestNames(out.RawOutput), nil
}
