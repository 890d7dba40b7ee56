// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.chromium.org/wasmtest/internal/testutil"
)

func TestExecBundle(t *testing.T) {
	td := testutil.TempDir(t)
	script := testutil.WriteScript(t, td, "rt", `
echo "Test Case 'A.b' passed"
echo "warn" >&2
exit 0
`)
	var stdout, stderr bytes.Buffer
	out, err := ExecBundle(context.Background(), []string{script}, td, Streams{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatal("ExecBundle failed: ", err)
	}
	if !out.Passed || out.Trap != nil {
		t.Errorf("Got outcome %+v; want passed without trap", out)
	}
	if stdout.String() != "Test Case 'A.b' passed\n" || stderr.String() != "warn\n" {
		t.Errorf("Got stdout %q and stderr %q", stdout.String(), stderr.String())
	}
}

func TestExecBundleExitStatus(t *testing.T) {
	td := testutil.TempDir(t)
	script := testutil.WriteScript(t, td, "rt", "exit 3\n")
	out, err := ExecBundle(context.Background(), []string{script}, td, Streams{})
	if err != nil {
		t.Fatal("ExecBundle failed: ", err)
	}
	if out.Passed {
		t.Error("Outcome.Passed = true for non-zero exit status")
	}
}

func TestExecBundleSpawnError(t *testing.T) {
	td := testutil.TempDir(t)
	args := []string{filepath.Join(td, "missing"), "run", "a b"}
	_, err := ExecBundle(context.Background(), args, td, Streams{})
	var serr *SpawnError
	if !errors.As(err, &serr) {
		t.Fatalf("ExecBundle returned %v; want *SpawnError", err)
	}
	if !strings.Contains(serr.Error(), "'a b'") {
		t.Errorf("SpawnError %q doesn't contain the escaped command", serr.Error())
	}
}

func TestExecBundleCanceled(t *testing.T) {
	td := testutil.TempDir(t)
	script := testutil.WriteScript(t, td, "rt", "sleep 60 &\nsleep 60\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := ExecBundle(ctx, []string{script}, td, Streams{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ExecBundle returned %v; want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed > 30*time.Second {
		t.Errorf("ExecBundle took %v after cancelation", elapsed)
	}
}

func TestListWithProcess(t *testing.T) {
	td := testutil.TempDir(t)
	script := testutil.WriteScript(t, td, "rt", `
echo "MilkTests.MilkTests/testOne"
echo "MilkTests.MilkTests/testTwo"
`)
	names, err := ListWithProcess(context.Background(), []string{script}, td)
	if err != nil {
		t.Fatal("ListWithProcess failed: ", err)
	}
	if len(names) != 2 || names[0] != "MilkTests.MilkTests/testOne" {
		t.Errorf("ListWithProcess returned %q", names)
	}
}
