// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil_test

import (
	"testing"

	"go.chromium.org/wasmtest/internal/shutil"
)

func TestEscape(t *testing.T) {
	for _, c := range []struct {
		in, exp string
	}{
		{``, `''`},
		{` `, `' '`},
		{`ab`, `ab`},
		{`a b`, `'a b'`},
		{`AZaz09@%_+=:,./-`, `AZaz09@%_+=:,./-`},
		{`a!b`, `'a!b'`},
		{`'`, `''"'"''`},
		{`=foo`, `'=foo'`},
		{`Suite/test case`, `'Suite/test case'`},
		{`--stack-first`, `--stack-first`},
	} {
		if s := shutil.Escape(c.in); s != c.exp {
			t.Errorf("Escape(%q) = %q; want %q", c.in, s, c.exp)
		}
	}
}

func TestEscapeSlice(t *testing.T) {
	const exp = `wasmer run /tmp/a.wasm -- 'Suite/it works'`
	if got := shutil.EscapeSlice([]string{"wasmer", "run", "/tmp/a.wasm", "--", "Suite/it works"}); got != exp {
		t.Errorf("EscapeSlice() = %q; want %q", got, exp)
	}
}
