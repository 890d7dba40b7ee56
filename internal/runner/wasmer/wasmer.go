// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package wasmer runs test bundles on the standalone wasmer runtime.
package wasmer

import (
	"context"

	"go.chromium.org/wasmtest/internal/runner"
)

// Config holds parameters of a Runner.
type Config struct {
	// Wasmer is the wasmer executable. If empty, "wasmer" is looked up in
	// PATH.
	Wasmer string
	// BundlePath is the path of the test bundle.
	BundlePath string
	// Streams receives the output of the bundle.
	Streams runner.Streams
}

// Runner runs bundles with "wasmer run".
type Runner struct {
	cfg Config
}

var _ runner.Runner = (*Runner)(nil)

// New returns a new Runner.
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// args returns the wasmer command line for sel. Arguments after "--" are
// passed to the bundle.
func (r *Runner) args(sel runner.Selection) []string {
	exe := r.cfg.Wasmer
	if exe == "" {
		exe = "wasmer"
	}
	args := []string{exe, "run", r.cfg.BundlePath}
	switch {
	case sel.ListOnly:
		args = append(args, "--", "-l")
	case len(sel.TestCases) > 0:
		args = append(args, "--")
		args = append(args, sel.TestCases...)
	}
	return args
}

// ListTestCases runs the bundle with -l and returns the printed test names.
func (r *Runner) ListTestCases(ctx context.Context) ([]string, error) {
	return runner.ListWithProcess(ctx, r.args(runner.Selection{ListOnly: true}), "")
}

// Run runs the bundle.
func (r *Runner) Run(ctx context.Context, sel runner.Selection) (*runner.Outcome, error) {
	return runner.ExecBundle(ctx, r.args(sel), "", r.cfg.Streams)
}
