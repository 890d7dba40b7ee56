// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package bundle inspects compiled WebAssembly test bundles before they are
// handed to a runner.
package bundle

import (
	"bytes"
	"context"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
)

const (
	// SanitizerModule is the import module providing stack sanitizer hooks.
	SanitizerModule = "__stack_sanitizer"
	// wasiModule is the import module of WASI preview 1.
	wasiModule = "wasi_snapshot_preview1"
	// entryPoint is the function exported by WASI commands.
	entryPoint = "_start"
)

// wasmMagic is the header of WebAssembly binary modules.
var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// coreFeatures are the features enabled when compiling bundles. Runtimes
// running bundles support threads, so they are enabled too.
const coreFeatures = api.CoreFeaturesV2 | experimental.CoreFeaturesThreads

// Import is a function imported by a bundle.
type Import struct {
	Module string
	Name   string
}

// Info describes a test bundle.
type Info struct {
	// Path is the path of the bundle file.
	Path string
	// Size is the size of the bundle in bytes.
	Size int64
	// Imports lists imported functions in declaration order.
	Imports []Import
	// Exports lists names of exported functions, sorted.
	Exports []string
	// CompileError is set if the module has a WebAssembly header but
	// couldn't be compiled here. Imports and Exports are empty then, and
	// the runtime that runs the bundle has the final say.
	CompileError error
}

// UsesStackSanitizer reports whether the bundle was built with the stack
// overflow sanitizer and expects its hooks to be provided by the host.
func (i *Info) UsesStackSanitizer() bool {
	return i.importsModule(SanitizerModule)
}

// UsesWASI reports whether the bundle imports WASI preview 1 functions.
func (i *Info) UsesWASI() bool {
	return i.importsModule(wasiModule)
}

// HasEntryPoint reports whether the bundle exports the WASI command entry
// point.
func (i *Info) HasEntryPoint() bool {
	for _, name := range i.Exports {
		if name == entryPoint {
			return true
		}
	}
	return false
}

func (i *Info) importsModule(mod string) bool {
	for _, imp := range i.Imports {
		if imp.Module == mod {
			return true
		}
	}
	return false
}

// Inspect reads the bundle at path and compiles it to find its imports and
// exports. The module is never instantiated. An error is returned only if the
// file can't be read or isn't a WebAssembly binary; compilation failures are
// reported in Info.CompileError.
func Inspect(ctx context.Context, path string) (*Info, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read bundle")
	}
	if !bytes.HasPrefix(b, wasmMagic) {
		return nil, errors.Errorf("%v is not a WebAssembly module", path)
	}
	info := &Info{Path: path, Size: int64(len(b))}

	cfg := wazero.NewRuntimeConfigInterpreter().WithCoreFeatures(coreFeatures)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	mod, err := rt.CompileModule(ctx, b)
	if err != nil {
		info.CompileError = err
		return info, nil
	}
	defer mod.Close(ctx)

	for _, def := range mod.ImportedFunctions() {
		m, n, ok := def.Import()
		if !ok {
			continue
		}
		info.Imports = append(info.Imports, Import{Module: m, Name: n})
	}
	for name := range mod.ExportedFunctions() {
		info.Exports = append(info.Exports, name)
	}
	sort.Strings(info.Exports)
	return info, nil
}
