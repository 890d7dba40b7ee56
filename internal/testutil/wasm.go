// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FuncImport names a function imported by a WebAssembly module.
type FuncImport struct {
	Module, Name string
}

// WasmModule returns the binary encoding of a minimal WebAssembly module
// importing the given functions, all of type () -> ().
func WasmModule(imports ...FuncImport) []byte {
	b := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	if len(imports) == 0 {
		return b
	}
	// Type section with a single () -> () function type.
	b = appendSection(b, 1, []byte{0x01, 0x60, 0x00, 0x00})

	var sec []byte
	sec = appendULEB(sec, uint32(len(imports)))
	for _, imp := range imports {
		sec = appendName(sec, imp.Module)
		sec = appendName(sec, imp.Name)
		sec = append(sec, 0x00, 0x00) // function import of type 0
	}
	return appendSection(b, 2, sec)
}

// WriteWasmModule writes a module built by WasmModule to dir/name and
// returns its path.
func WriteWasmModule(t *testing.T, dir, name string, imports ...FuncImport) string {
	t.Helper()
	return WriteWasm(t, dir, name, WasmModule(imports...))
}

// WriteWasm writes the module b to dir/name and returns its path.
func WriteWasm(t *testing.T, dir, name string, b []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// CommandModule returns a WASI command module exporting "memory" and a
// "_start" function that calls the given imports, all of type () -> (), in
// order.
func CommandModule(imports ...FuncImport) []byte {
	b := WasmModule(imports...)
	if len(imports) == 0 {
		b = appendSection(b, 1, []byte{0x01, 0x60, 0x00, 0x00})
	}

	// Function section: one function of type 0.
	b = appendSection(b, 3, []byte{0x01, 0x00})
	// Memory section: one memory of one page.
	b = appendSection(b, 5, []byte{0x01, 0x00, 0x01})

	start := uint32(len(imports))
	var exports []byte
	exports = appendULEB(exports, 2)
	exports = appendName(exports, "_start")
	exports = append(exports, 0x00)
	exports = appendULEB(exports, start)
	exports = appendName(exports, "memory")
	exports = append(exports, 0x02, 0x00)
	b = appendSection(b, 7, exports)

	body := []byte{0x00} // no locals
	for i := range imports {
		body = append(body, 0x10) // call
		body = appendULEB(body, uint32(i))
	}
	body = append(body, 0x0b) // end
	var code []byte
	code = appendULEB(code, 1)
	code = appendULEB(code, uint32(len(body)))
	code = append(code, body...)
	return appendSection(b, 10, code)
}

// SharedMemoryModule returns a module importing env.memory as a shared
// memory, as built for wasi-threads.
func SharedMemoryModule() []byte {
	b := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	var sec []byte
	sec = appendULEB(sec, 1)
	sec = appendName(sec, "env")
	sec = appendName(sec, "memory")
	sec = append(sec, 0x02, 0x03, 0x01, 0x10) // shared memory, 1 to 16 pages
	return appendSection(b, 2, sec)
}

// MalformedModule returns bytes with a valid WebAssembly header followed by a
// corrupt type section.
func MalformedModule() []byte {
	b := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	return appendSection(b, 1, []byte{0x01, 0x42})
}

func appendSection(b []byte, id byte, content []byte) []byte {
	b = append(b, id)
	b = appendULEB(b, uint32(len(content)))
	return append(b, content...)
}

func appendName(b []byte, s string) []byte {
	b = appendULEB(b, uint32(len(s)))
	return append(b, s...)
}

func appendULEB(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}
