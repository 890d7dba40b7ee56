// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package node runs test bundles on node using an embedded WASI harness.
package node

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/runner"
)

//go:embed harness.mjs
var harness []byte

// harnessName is the file name the harness is written to.
const harnessName = "harness.mjs"

// Config holds parameters of a Runner.
type Config struct {
	// Node is the node executable. If empty, "node" is looked up in PATH.
	Node string
	// BundlePath is the path of the test bundle.
	BundlePath string
	// Streams receives the output of the bundle.
	Streams runner.Streams
}

// Runner runs bundles with node.
type Runner struct {
	cfg Config
}

var _ runner.Runner = (*Runner)(nil)

// New returns a new Runner.
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// writeHarness writes the harness script to a new temporary directory and
// returns its path. The caller must remove the directory.
func writeHarness() (dir, path string, err error) {
	dir, err = os.MkdirTemp("", "wasmtest_node.")
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create harness dir")
	}
	path = filepath.Join(dir, harnessName)
	if err := os.WriteFile(path, harness, 0644); err != nil {
		os.RemoveAll(dir)
		return "", "", errors.Wrap(err, "failed to write harness")
	}
	return dir, path, nil
}

func (r *Runner) args(harnessPath string, sel runner.Selection) []string {
	exe := r.cfg.Node
	if exe == "" {
		exe = "node"
	}
	// node:wasi prints an ExperimentalWarning that would pollute stderr.
	args := []string{exe, "--no-warnings", harnessPath, r.cfg.BundlePath}
	if sel.ListOnly {
		return append(args, "-l")
	}
	return append(args, sel.TestCases...)
}

// ListTestCases runs the bundle with -l and returns the printed test names.
func (r *Runner) ListTestCases(ctx context.Context) ([]string, error) {
	dir, path, err := writeHarness()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	return runner.ListWithProcess(ctx, r.args(path, runner.Selection{ListOnly: true}), "")
}

// Run runs the bundle.
func (r *Runner) Run(ctx context.Context, sel runner.Selection) (*runner.Outcome, error) {
	dir, path, err := writeHarness()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	logging.Debug(ctx, "Wrote node harness to ", path)
	return runner.ExecBundle(ctx, r.args(path, sel), "", r.cfg.Streams)
}
