// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package symbolize turns raw crash text reported by JavaScript engines into
// readable stack traces.
package symbolize

import (
	"regexp"
	"strings"

	"go.chromium.org/wasmtest/internal/symbolize/swift"
)

// FrameKind describes which kind of code a stack frame belongs to.
type FrameKind int

const (
	// Scripted is a frame in JavaScript code, e.g. the harness.
	Scripted FrameKind = iota
	// WebAssembly is a frame in the test bundle.
	WebAssembly
)

func (k FrameKind) String() string {
	switch k {
	case Scripted:
		return "javascript"
	case WebAssembly:
		return "webassembly"
	default:
		return "unknown"
	}
}

// StackTraceItem is a single resolved frame of a stack trace.
type StackTraceItem struct {
	// Symbol is the function name. Symbols of WebAssembly frames are
	// demangled.
	Symbol string
	// Location is the source location as reported by the engine.
	Location string
	Kind     FrameKind
}

// framePattern is a regular expression recognizing one shape of stack frame.
// Its first submatch is the symbol and its second one is the location.
type framePattern struct {
	re   *regexp.Regexp
	kind FrameKind
}

var (
	// Frames as printed by Firefox for bundled JavaScript and for
	// WebAssembly functions instantiated from a page served over HTTP.
	firefoxPatterns = []framePattern{
		{regexp.MustCompile(`^(.+)@webpack:///(.+)$`), Scripted},
		{regexp.MustCompile(`^(.+)@https?://[^/\s]+.*WebAssembly\.instantiate:(.+)$`), WebAssembly},
	}

	// Frames as printed by V8, i.e. node and Chromium.
	v8Patterns = []framePattern{
		{regexp.MustCompile(`^at (?:async )?(.+) \((wasm://.+)\)$`), WebAssembly},
		{regexp.MustCompile(`^at (?:async )?(.+) \((.+:\d+:\d+)\)$`), Scripted},
	}
)

// ParseFirefox parses stack frames in the format used by Firefox. Lines that
// are not recognized as frames are skipped.
func ParseFirefox(text string) []StackTraceItem {
	return parse(text, firefoxPatterns)
}

// ParseV8 parses stack frames in the format used by V8. Lines that are not
// recognized as frames are skipped.
func ParseV8(text string) []StackTraceItem {
	return parse(text, v8Patterns)
}

// Parse parses stack frames printed by any supported engine, preferring the
// Firefox formats when a line matches more than one. The frames are returned
// in the order they appear in text.
func Parse(text string) []StackTraceItem {
	return parse(text, append(append([]framePattern(nil), firefoxPatterns...), v8Patterns...))
}

func parse(text string, patterns []framePattern) []StackTraceItem {
	var items []StackTraceItem
	for _, line := range strings.Split(text, "\n") {
		if item, ok := parseLine(strings.TrimSpace(line), patterns); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseLine(line string, patterns []framePattern) (StackTraceItem, bool) {
	if line == "" {
		return StackTraceItem{}, false
	}
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := StackTraceItem{Symbol: m[1], Location: m[2], Kind: p.kind}
		if p.kind == WebAssembly && swift.IsMangled(item.Symbol) {
			item.Symbol = swift.Demangle(item.Symbol)
		}
		return item, true
	}
	return StackTraceItem{}, false
}
