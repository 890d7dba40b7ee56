// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/logging/loggingtest"
	"go.chromium.org/wasmtest/internal/testutil"
)

// fakeSwift is a shell script standing in for the swift executable. It
// records build arguments to args.txt and creates the test bundle unless
// FAIL_BUILD is set.
const fakeSwift = `
if [ "$1" = package ]; then
  echo '{"name":"Milk","targets":[{"name":"Milk","type":"regular"},{"name":"MilkTests","type":"test"}]}'
  exit 0
fi
echo "$@" > args.txt
if [ -n "$FAIL_BUILD" ]; then
  echo "error: cannot find 'foo' in scope"
  exit 1
fi
dir=.build/debug
if [ "$4" = wasm32-unknown-wasi ] && [ "$5" = -c ]; then dir=.build/$6; fi
mkdir -p $dir
: > $dir/MilkPackageTests.wasm
`

func newFakeSwiftPM(t *testing.T) *SwiftPM {
	td := testutil.TempDir(t)
	return &SwiftPM{Swift: testutil.WriteScript(t, td, "swift", fakeSwift), Dir: td}
}

func TestManifest(t *testing.T) {
	s := newFakeSwiftPM(t)
	m, err := s.Manifest(context.Background())
	if err != nil {
		t.Fatal("Manifest failed: ", err)
	}
	want := &Manifest{
		Name: "Milk",
		Targets: []Target{
			{Name: "Milk", Type: "regular"},
			{Name: "MilkTests", Type: "test"},
		},
	}
	if diff := cmp.Diff(m, want); diff != "" {
		t.Errorf("Manifest mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(m.TestTargets(), []string{"MilkTests"}); diff != "" {
		t.Errorf("TestTargets mismatch (-got +want):\n%s", diff)
	}
}

func TestBuildTestBundle(t *testing.T) {
	sanitize := StackOverflow
	for _, tc := range []struct {
		name     string
		flavor   BuildFlavor
		wantArgs string
		wantPath string
	}{
		{
			name:     "debug",
			flavor:   BuildFlavor{Environment: Wasmer},
			wantArgs: "build --build-tests --triple wasm32-unknown-wasi",
			wantPath: ".build/debug/MilkPackageTests.wasm",
		},
		{
			name: "release with flags",
			flavor: BuildFlavor{
				Release:       true,
				Environment:   Node,
				Sanitize:      &sanitize,
				CompilerFlags: []string{"-Onone", "-g"},
			},
			wantArgs: "build --build-tests --triple wasm32-unknown-wasi -c release -Xswiftc -Onone -Xswiftc -g -Xlinker --stack-first",
			wantPath: ".build/release/MilkPackageTests.wasm",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newFakeSwiftPM(t)
			path, err := s.BuildTestBundle(context.Background(), tc.flavor)
			if err != nil {
				t.Fatal("BuildTestBundle failed: ", err)
			}
			if want := filepath.Join(s.Dir, tc.wantPath); path != want {
				t.Errorf("BuildTestBundle returned %q; want %q", path, want)
			}
			b, err := os.ReadFile(filepath.Join(s.Dir, "args.txt"))
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.TrimSpace(string(b)); got != tc.wantArgs {
				t.Errorf("swift called with %q; want %q", got, tc.wantArgs)
			}
		})
	}
}

func TestBuildTestBundleFailure(t *testing.T) {
	t.Setenv("FAIL_BUILD", "1")
	ctx, logger := loggingtest.NewContext(t, logging.LevelInfo)
	s := newFakeSwiftPM(t)

	_, err := s.BuildTestBundle(ctx, BuildFlavor{})
	var berr *BuildError
	if !errors.As(err, &berr) {
		t.Fatalf("BuildTestBundle returned %v; want *BuildError", err)
	}
	if !strings.Contains(berr.Output, "cannot find 'foo'") {
		t.Errorf("BuildError.Output = %q; want compiler output", berr.Output)
	}
	if !strings.Contains(logger.String(), "cannot find 'foo'") {
		t.Errorf("Compiler output not logged; got %q", logger.String())
	}
}

func TestEnvironmentString(t *testing.T) {
	for e, want := range map[Environment]string{
		Wasmer:         "wasmer",
		Node:           "node",
		DefaultBrowser: "defaultBrowser",
	} {
		if got := e.String(); got != want {
			t.Errorf("%d.String() = %q; want %q", int(e), got, want)
		}
	}
	if !DefaultBrowser.IsBrowser() || Wasmer.IsBrowser() {
		t.Error("IsBrowser() returned wrong values")
	}
}
