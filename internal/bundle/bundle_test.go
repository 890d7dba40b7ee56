// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wasmtest/internal/testutil"
)

func TestInspect(t *testing.T) {
	td := testutil.TempDir(t)
	path := testutil.WriteWasmModule(t, td, "Tests.wasm",
		testutil.FuncImport{Module: "wasi_snapshot_preview1", Name: "fd_write"},
		testutil.FuncImport{Module: SanitizerModule, Name: "report_stack_overflow"})

	info, err := Inspect(context.Background(), path)
	if err != nil {
		t.Fatal("Inspect failed: ", err)
	}
	want := []Import{
		{Module: "wasi_snapshot_preview1", Name: "fd_write"},
		{Module: SanitizerModule, Name: "report_stack_overflow"},
	}
	if diff := cmp.Diff(info.Imports, want); diff != "" {
		t.Errorf("Imports mismatch (-got +want):\n%s", diff)
	}
	if !info.UsesStackSanitizer() {
		t.Error("UsesStackSanitizer() = false; want true")
	}
	if !info.UsesWASI() {
		t.Error("UsesWASI() = false; want true")
	}
	if info.Size != int64(len(testutil.WasmModule(testutil.FuncImport(want[0]), testutil.FuncImport{Module: SanitizerModule, Name: "report_stack_overflow"}))) {
		t.Errorf("Size = %d; want size of module", info.Size)
	}
}

func TestInspectNoImports(t *testing.T) {
	td := testutil.TempDir(t)
	path := testutil.WriteWasmModule(t, td, "Empty.wasm")

	info, err := Inspect(context.Background(), path)
	if err != nil {
		t.Fatal("Inspect failed: ", err)
	}
	if info.UsesStackSanitizer() {
		t.Error("UsesStackSanitizer() = true; want false")
	}
	if len(info.Imports) != 0 || len(info.Exports) != 0 {
		t.Errorf("Got imports %v and exports %v; want none", info.Imports, info.Exports)
	}
}

func TestInspectInvalid(t *testing.T) {
	td := testutil.TempDir(t)
	path := filepath.Join(td, "bogus.wasm")
	if err := os.WriteFile(path, []byte("not wasm"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(context.Background(), path); err == nil {
		t.Error("Inspect succeeded for a file that isn't WebAssembly")
	}
	if _, err := Inspect(context.Background(), filepath.Join(td, "missing.wasm")); err == nil {
		t.Error("Inspect succeeded for missing file")
	}
}

func TestInspectSharedMemory(t *testing.T) {
	td := testutil.TempDir(t)
	path := testutil.WriteWasm(t, td, "Threads.wasm", testutil.SharedMemoryModule())

	info, err := Inspect(context.Background(), path)
	if err != nil {
		t.Fatal("Inspect failed: ", err)
	}
	if info.CompileError != nil {
		t.Error("Module importing shared memory didn't compile: ", info.CompileError)
	}
}

func TestInspectCompileError(t *testing.T) {
	td := testutil.TempDir(t)
	path := testutil.WriteWasm(t, td, "Broken.wasm", testutil.MalformedModule())

	info, err := Inspect(context.Background(), path)
	if err != nil {
		t.Fatal("Inspect failed for a module with a WebAssembly header: ", err)
	}
	if info.CompileError == nil {
		t.Error("CompileError = nil; want an error for a corrupt module")
	}
	if info.Size != int64(len(testutil.MalformedModule())) {
		t.Errorf("Size = %d; want %d", info.Size, len(testutil.MalformedModule()))
	}
}

func TestInspectEntryPoint(t *testing.T) {
	td := testutil.TempDir(t)
	hook := testutil.FuncImport{Module: SanitizerModule, Name: "report_stack_overflow"}
	path := testutil.WriteWasm(t, td, "Command.wasm", testutil.CommandModule(hook))

	info, err := Inspect(context.Background(), path)
	if err != nil {
		t.Fatal("Inspect failed: ", err)
	}
	if diff := cmp.Diff(info.Exports, []string{"_start"}); diff != "" {
		t.Errorf("Exports mismatch (-got +want):\n%s", diff)
	}
	if !info.HasEntryPoint() {
		t.Error("HasEntryPoint() = false; want true")
	}
	if info.UsesWASI() {
		t.Error("UsesWASI() = true; want false")
	}
}
