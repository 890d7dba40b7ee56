// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/shutil"
)

// Toolchain builds test bundles.
type Toolchain interface {
	// BuildTestBundle builds the test bundle of the package and returns its
	// absolute path. It returns *BuildError if compilation fails.
	BuildTestBundle(ctx context.Context, flavor BuildFlavor) (string, error)
	// Manifest returns the description of the package.
	Manifest(ctx context.Context) (*Manifest, error)
}

// BuildError is returned when the toolchain fails to build a bundle.
type BuildError struct {
	// Cmd is the command line that was run.
	Cmd []string
	// Output is the combined output of the command.
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed: %s: %v", shutil.EscapeSlice(e.Cmd), e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// wasiTriple is the target triple test bundles are compiled for.
const wasiTriple = "wasm32-unknown-wasi"

// SwiftPM builds bundles with the Swift package manager.
type SwiftPM struct {
	// Swift is the swift executable. If empty, "swift" is looked up in PATH.
	Swift string
	// Dir is the package root directory.
	Dir string
}

var _ Toolchain = (*SwiftPM)(nil)

func (s *SwiftPM) swift() string {
	if s.Swift == "" {
		return "swift"
	}
	return s.Swift
}

// Manifest runs "swift package dump-package" and decodes its output.
func (s *SwiftPM) Manifest(ctx context.Context) (*Manifest, error) {
	args := []string{s.swift(), "package", "dump-package"}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = s.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed: %s", shutil.EscapeSlice(args), strings.TrimSpace(stderr.String()))
	}
	var m Manifest
	if err := json.Unmarshal(out, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode package manifest")
	}
	if m.Name == "" {
		return nil, errors.New("package manifest has no name")
	}
	return &m, nil
}

// buildArgs returns the swift command line used to build flavor.
func (s *SwiftPM) buildArgs(flavor BuildFlavor) []string {
	args := []string{s.swift(), "build", "--build-tests", "--triple", wasiTriple}
	if flavor.Release {
		args = append(args, "-c", "release")
	}
	for _, f := range flavor.CompilerFlags {
		args = append(args, "-Xswiftc", f)
	}
	if flavor.Sanitize != nil && *flavor.Sanitize == StackOverflow {
		args = append(args, "-Xlinker", "--stack-first")
	}
	return args
}

// BuildTestBundle runs "swift build" and returns the path of the produced
// <Name>PackageTests.wasm.
func (s *SwiftPM) BuildTestBundle(ctx context.Context, flavor BuildFlavor) (string, error) {
	m, err := s.Manifest(ctx)
	if err != nil {
		return "", err
	}

	args := s.buildArgs(flavor)
	logging.Infof(ctx, "Building %s for %v", m.Name, flavor.Environment)
	logging.Debug(ctx, "Running ", shutil.EscapeSlice(args))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = s.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		writeMultiline(ctx, string(out))
		return "", &BuildError{Cmd: args, Output: string(out), Err: err}
	}

	config := "debug"
	if flavor.Release {
		config = "release"
	}
	path, err := filepath.Abs(filepath.Join(s.Dir, ".build", config, m.Name+"PackageTests.wasm"))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", &BuildError{Cmd: args, Output: string(out), Err: errors.Wrap(err, "test bundle not found")}
	}
	return path, nil
}

// writeMultiline logs each line of s.
func writeMultiline(ctx context.Context, s string) {
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		logging.Info(ctx, line)
	}
}
