// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/wasmtest/internal/symbolize"
)

func feed(t *testing.T, m *Monitor, out io.Writer, chunks ...string) {
	t.Helper()
	w := m.Writer(out)
	for _, c := range chunks {
		if _, err := io.WriteString(w, c); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
}

func TestMonitorPassed(t *testing.T) {
	m := NewMonitor()
	var out bytes.Buffer
	feed(t, m, &out, "Test Suite 'All tests' started\n", "Test Case 'MilkTests.testA' pas", "sed (0.001 seconds)\n")

	if out.String() != "Test Suite 'All tests' started\nTest Case 'MilkTests.testA' passed (0.001 seconds)\n" {
		t.Errorf("Output not copied; got %q", out.String())
	}
	got := m.Outcome(true)
	want := &Outcome{Passed: true, RawOutput: out.String()}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Outcome mismatch (-got +want):\n%s", diff)
	}
}

func TestMonitorFailures(t *testing.T) {
	for _, tc := range []struct {
		name   string
		output string
		exitOK bool
	}{
		{"test case failed", "Test Case 'MilkTests.testA' failed (0.002 seconds)\n", true},
		{"suite failed", "Test Suite 'MilkTests' failed at 2026-01-01\n", true},
		{"fatal error", "Swift/Optional.swift:12: Fatal error: Unexpectedly found nil\n", true},
		{"nonzero exit", "all good\n", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMonitor()
			feed(t, m, nil, tc.output)
			out := m.Outcome(tc.exitOK)
			if out.Passed {
				t.Error("Outcome.Passed = true; want false")
			}
			if out.Trap != nil {
				t.Errorf("Outcome.Trap = %+v; want nil", out.Trap)
			}
		})
	}
}

func TestMonitorTrap(t *testing.T) {
	const trace = `Error: Detected stack-buffer-overflow.
    at Object.report_stack_overflow (file:///tmp/harness.mjs:20:11)
    at $s4Test3fooyyF (wasm://wasm/0001a2b6:wasm-function[12]:0x1234)
`
	for _, exitOK := range []bool{true, false} {
		m := NewMonitor()
		feed(t, m, nil, "Test Case 'MilkTests.testA' started\n", trace)
		out := m.Outcome(exitOK)
		if out.Passed {
			t.Errorf("exitOK=%v: Outcome.Passed = true; want false", exitOK)
		}
		want := &Trap{
			Kind:    StackOverflow,
			Message: "Error: Detected stack-buffer-overflow.",
			RawTrace: "    at Object.report_stack_overflow (file:///tmp/harness.mjs:20:11)\n" +
				"    at $s4Test3fooyyF (wasm://wasm/0001a2b6:wasm-function[12]:0x1234)",
			Frames: []symbolize.StackTraceItem{
				{Symbol: "Object.report_stack_overflow", Location: "file:///tmp/harness.mjs:20:11", Kind: symbolize.Scripted},
				{Symbol: "Test.foo() -> ()", Location: "wasm://wasm/0001a2b6:wasm-function[12]:0x1234", Kind: symbolize.WebAssembly},
			},
		}
		if diff := cmp.Diff(out.Trap, want); diff != "" {
			t.Errorf("exitOK=%v: Trap mismatch (-got +want):\n%s", exitOK, diff)
		}
	}
}

func TestMonitorSeparateStreams(t *testing.T) {
	m := NewMonitor()
	stdout := m.Writer(nil)
	stderr := m.Writer(nil)
	io.WriteString(stdout, "Test Case 'A.b' ")
	io.WriteString(stderr, "warning\n")
	io.WriteString(stdout, "failed (0.1 seconds)\n")
	stdout.Close()
	stderr.Close()

	if !m.Failed() {
		t.Error("Failed() = false; want true for a line split across writes")
	}
	if got, want := m.Output(), "warning\nTest Case 'A.b' failed (0.1 seconds)\n"; got != want {
		t.Errorf("Output() = %q; want %q", got, want)
	}
}

func TestParseTestNames(t *testing.T) {
	const out = `Listing 2 tests in MilkPackageTests.xctest:

MilkTests.MilkTests/testOne
MilkTests.MilkTests/testTwo
`
	want := []string{"MilkTests.MilkTests/testOne", "MilkTests.MilkTests/testTwo"}
	if diff := cmp.Diff(ParseTestNames(out), want); diff != "" {
		t.Errorf("ParseTestNames mismatch (-got +want):\n%s", diff)
	}
}

func TestEventMonitorIgnoresTrapText(t *testing.T) {
	m := NewEventMonitor()
	feed(t, m, nil, "printing: Detected stack-buffer-overflow.\n", "Test Suite 'All tests' passed\n")
	if trap := m.Trap(); trap != nil {
		t.Errorf("Trap() = %v; want nil for plain output", trap)
	}
	if out := m.Outcome(true); !out.Passed {
		t.Errorf("Outcome(true) = %+v; want passed", out)
	}
}

func TestEventMonitorSetTrap(t *testing.T) {
	m := NewEventMonitor()
	feed(t, m, nil, "Test Case 'A.b' failed (0.1 seconds)\n")
	first := NewTrap(StackOverflow, "Detected stack-buffer-overflow.", "")
	m.SetTrap(first)
	m.SetTrap(NewTrap(StackOverflow, "second", ""))

	out := m.Outcome(true)
	if out.Passed {
		t.Error("Outcome reported success despite a trap")
	}
	if out.Trap != first {
		t.Errorf("Outcome trap = %v; want the first one reported", out.Trap)
	}
	if !m.Failed() {
		t.Error("Failed() = false; want failure markers recognized")
	}
}
