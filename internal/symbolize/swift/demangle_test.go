// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package swift

import (
	"testing"
)

func TestDemangle(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"$s4Test3fooyyF", "Test.foo() -> ()"},
		{"_$s4Test3fooyyF", "Test.foo() -> ()"},
		{"$s4main3fooyySiF", "main.foo(Swift.Int) -> ()"},
		{"$s4main3foo1xySiF", "main.foo(x: Swift.Int) -> ()"},
		{"$s4main3add1a1bS2i_SitF", "main.add(a: Swift.Int, b: Swift.Int) -> Swift.Int"},
		{"$s4main3fooyySaySiGF", "main.foo(Swift.Array<Swift.Int>) -> ()"},
		{"$s4main3fooyySiSgF", "main.foo(Swift.Optional<Swift.Int>) -> ()"},
		{"$s4main3fooyyKF", "main.foo() throws -> ()"},
		{"$s4main3fooyyYaKF", "main.foo() async throws -> ()"},
		{"$s4main3fooyyxlF", "main.foo<A>(A) -> ()"},
		{"$s4main3FooVACycfC", "main.Foo.init() -> main.Foo"},
		{"$s4main3FooCACycfC", "main.Foo.__allocating_init() -> main.Foo"},
		{"$s4main3FooCfD", "main.Foo.__deallocating_deinit"},
		{"$s4main3FooV3baryyFZ", "static main.Foo.bar() -> ()"},
		{"$s4main3fooyyFyycfU_", "closure #1 () -> () in main.foo() -> ()"},
		{"$s4main3fooyyFyycfU0_", "closure #2 () -> () in main.foo() -> ()"},
		{"$s4main1xSivp", "main.x : Swift.Int"},
		{"$s4main3FooV3barSivg", "main.Foo.bar.getter : Swift.Int"},
		{"$s4main3FooV3barSivs", "main.Foo.bar.setter : Swift.Int"},
		{"$s4main11MyFancyTypeV0D4NameSSvp", "main.MyFancyType.TypeName : Swift.String"},
		{"$s4main3FooVMa", "type metadata accessor for main.Foo"},
		{"$s4main3FooVN", "type metadata for main.Foo"},
		{"$s4main3fooyyFTA", "partial apply forwarder for main.foo() -> ()"},
		{"$s4main3fooyyzSiF", "$s4main3fooyyzSiF"},
	} {
		if got := Demangle(tc.in); got != tc.want {
			t.Errorf("Demangle(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestDemangleUnchanged(t *testing.T) {
	for _, s := range []string{
		"",
		"main",
		"__original_main",
		"$s",
		"$s4main",
		"$s99main3fooyyF",
		"$s4main3fooyyFQQQ",
		"$s4main3fooyyF3bar",
		"$s0004mainyyF",
		"_ZN4core3fmt5write17h3f5b0a1d2e3c4b5aE",
	} {
		if got := Demangle(s); got != s {
			t.Errorf("Demangle(%q) = %q; want input unchanged", s, got)
		}
	}
}

func TestDemangleIdempotent(t *testing.T) {
	for _, s := range []string{
		"$s4Test3fooyyF",
		"$s4main3FooV3barSivg",
		"$s4main3fooyyFyycfU_",
		"not a symbol",
	} {
		once := Demangle(s)
		if twice := Demangle(once); twice != once {
			t.Errorf("Demangle(Demangle(%q)) = %q; want %q", s, twice, once)
		}
	}
}

func TestIsMangled(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"$s4Test3fooyyF", true},
		{"_$s4Test3fooyyF", true},
		{"_T04main3fooyyF", true},
		{"$s", false},
		{"main", false},
	} {
		if got := IsMangled(tc.in); got != tc.want {
			t.Errorf("IsMangled(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
