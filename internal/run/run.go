// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package run implements the test command: it obtains a test bundle, drives
// the runner for the selected environment and reports the result.
package run

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"go.chromium.org/wasmtest/internal/bundle"
	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/runner"
	"go.chromium.org/wasmtest/internal/runner/browser"
	"go.chromium.org/wasmtest/internal/runner/node"
	"go.chromium.org/wasmtest/internal/runner/wasmer"
	"go.chromium.org/wasmtest/internal/toolchain"
)

// RunnerFactory constructs the runner for a bundle.
type RunnerFactory func(cfg *Config, bundlePath string, manifest *toolchain.Manifest, streams runner.Streams) (runner.Runner, error)

// Deps holds the collaborators of Run. Zero fields are replaced with the
// real implementations.
type Deps struct {
	// Toolchain builds the bundle when no prebuilt one is given.
	Toolchain toolchain.Toolchain
	// NewRunner constructs the runner.
	NewRunner RunnerFactory
	// Stdout and Stderr receive the output of the bundle and listed test
	// names.
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the result of a successful Run.
type Result struct {
	// BundlePath is the absolute path of the bundle that was run.
	BundlePath string
	// TestCases is set in ListTestsMode.
	TestCases []string
	// Outcome is set in RunTestsMode.
	Outcome *runner.Outcome
}

func (d *Deps) withDefaults(cfg *Config) *Deps {
	out := *d
	if out.Toolchain == nil {
		out.Toolchain = &toolchain.SwiftPM{Swift: cfg.SwiftPath(), Dir: cfg.PackageDir()}
	}
	if out.NewRunner == nil {
		out.NewRunner = newRunner
	}
	if out.Stdout == nil {
		out.Stdout = io.Discard
	}
	if out.Stderr == nil {
		out.Stderr = io.Discard
	}
	return &out
}

// Run obtains the test bundle and runs or lists its tests according to cfg.
// Test failures and traps are reported through Result; an error is returned
// only if the tests could not be run.
func Run(ctx context.Context, cfg *Config, deps *Deps) (*Result, error) {
	if deps == nil {
		deps = &Deps{}
	}
	deps = deps.withDefaults(cfg)

	bundlePath, err := obtainBundle(ctx, cfg, deps.Toolchain)
	if err != nil {
		return nil, err
	}

	info, err := bundle.Inspect(ctx, bundlePath)
	if err != nil {
		return nil, err
	}
	checkBundle(ctx, cfg.Environment(), info)

	var manifest *toolchain.Manifest
	if cfg.Environment().IsBrowser() {
		// The manifest only decorates the harness page.
		if manifest, err = deps.Toolchain.Manifest(ctx); err != nil {
			logging.Debugf(ctx, "Package manifest unavailable: %v", err)
			manifest = nil
		} else {
			logging.Debugf(ctx, "Test targets of %s: %v", manifest.Name, manifest.TestTargets())
		}
	}

	r, err := deps.NewRunner(cfg, bundlePath, manifest, runner.Streams{Stdout: deps.Stdout, Stderr: deps.Stderr})
	if err != nil {
		return nil, err
	}

	res := &Result{BundlePath: bundlePath}
	switch cfg.Mode() {
	case ListTestsMode:
		names, err := r.ListTestCases(ctx)
		if err != nil {
			return nil, err
		}
		res.TestCases = names
	case RunTestsMode:
		logging.Infof(ctx, "Running %s in %v", bundlePath, cfg.Environment())
		out, err := r.Run(ctx, runner.Selection{TestCases: cfg.TestCases()})
		if err != nil {
			return nil, err
		}
		res.Outcome = out
	default:
		return nil, errors.Errorf("unknown mode %d", cfg.Mode())
	}
	return res, nil
}

// checkBundle logs problems with the bundle that env is likely to run into.
// The runtime decides whether the bundle can run.
func checkBundle(ctx context.Context, env toolchain.Environment, info *bundle.Info) {
	if info.CompileError != nil {
		logging.Warningf(ctx, "Could not inspect %s: %v", info.Path, info.CompileError)
		return
	}
	logging.Debugf(ctx, "Bundle %s: %d bytes, %d imports, %d exports",
		info.Path, info.Size, len(info.Imports), len(info.Exports))

	if info.UsesStackSanitizer() && env == toolchain.Wasmer {
		logging.Warningf(ctx, "%s imports %s hooks that wasmer does not provide; consider -environment node",
			info.Path, bundle.SanitizerModule)
	}
	if env.IsBrowser() {
		return
	}
	if !info.UsesWASI() {
		logging.Warningf(ctx, "%s imports no WASI functions; %v may not be able to run it", info.Path, env)
	}
	if !info.HasEntryPoint() {
		logging.Warningf(ctx, "%s exports no _start function", info.Path)
	}
}

// obtainBundle returns the prebuilt bundle path or builds the bundle.
func obtainBundle(ctx context.Context, cfg *Config, tc toolchain.Toolchain) (string, error) {
	if p := cfg.PrebuiltTestBundlePath(); p != "" {
		logging.Debugf(ctx, "Using prebuilt bundle %s", p)
		return p, nil
	}
	flavor := cfg.BuildFlavor()
	logging.Infof(ctx, "Building test bundle (release=%v, environment=%v)", flavor.Release, flavor.Environment)
	p, err := tc.BuildTestBundle(ctx, flavor)
	if err != nil {
		return "", err
	}
	return p, nil
}

// newRunner is the default RunnerFactory, selecting the runner by
// environment.
func newRunner(cfg *Config, bundlePath string, manifest *toolchain.Manifest, streams runner.Streams) (runner.Runner, error) {
	switch cfg.Environment() {
	case toolchain.Wasmer:
		return wasmer.New(wasmer.Config{Wasmer: cfg.WasmerPath(), BundlePath: bundlePath, Streams: streams}), nil
	case toolchain.Node:
		return node.New(node.Config{Node: cfg.NodePath(), BundlePath: bundlePath, Streams: streams}), nil
	case toolchain.DefaultBrowser:
		return browser.New(browser.Config{
			BundlePath: bundlePath,
			Host:       cfg.Host(),
			Port:       cfg.Port(),
			Timeout:    cfg.Timeout(),
			Manifest:   manifest,
			Launcher:   &browser.ExecLauncher{Path: cfg.BrowserPath(), Headless: cfg.Headless()},
			Streams:    streams,
		}), nil
	default:
		return nil, errors.Errorf("unsupported environment %v", cfg.Environment())
	}
}
