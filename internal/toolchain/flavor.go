// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package toolchain describes how test bundles are built and provides a thin
// SwiftPM-based implementation.
package toolchain

// Environment is an environment a test bundle can be run in.
type Environment int

const (
	// Wasmer runs the bundle on the standalone wasmer runtime.
	Wasmer Environment = iota
	// DefaultBrowser runs the bundle in a browser page.
	DefaultBrowser
	// Node runs the bundle on node with a WASI harness.
	Node
)

// EnvironmentNames maps user-visible environment names to values, in the
// form expected by command.NewEnumFlag.
var EnvironmentNames = map[string]int{
	"wasmer":         int(Wasmer),
	"defaultBrowser": int(DefaultBrowser),
	"node":           int(Node),
}

func (e Environment) String() string {
	for name, v := range EnvironmentNames {
		if v == int(e) {
			return name
		}
	}
	return "unknown"
}

// IsBrowser reports whether tests run in a browser.
func (e Environment) IsBrowser() bool {
	return e == DefaultBrowser
}

// SanitizeVariant is a runtime check compiled into the bundle.
type SanitizeVariant int

const (
	// StackOverflow detects stack buffer overflows in the bundle. The
	// runtime has to provide the __stack_sanitizer hooks.
	StackOverflow SanitizeVariant = iota
)

// SanitizeNames maps user-visible sanitizer names to values.
var SanitizeNames = map[string]int{
	"stackOverflow": int(StackOverflow),
}

func (v SanitizeVariant) String() string {
	for name, n := range SanitizeNames {
		if n == int(v) {
			return name
		}
	}
	return "unknown"
}

// BuildFlavor holds the parameters a test bundle is built with.
// It is built once per invocation and never modified.
type BuildFlavor struct {
	Release     bool
	Environment Environment
	// Sanitize is nil if no sanitizer is enabled.
	Sanitize *SanitizeVariant
	// CompilerFlags are extra flags passed to the Swift compiler.
	CompilerFlags []string
}

// Manifest is the package description reported by the toolchain.
type Manifest struct {
	Name    string   `json:"name"`
	Targets []Target `json:"targets"`
}

// Target is a target declared in a package manifest.
type Target struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TestTargets returns names of the test targets in m.
func (m *Manifest) TestTargets() []string {
	var names []string
	for _, t := range m.Targets {
		if t.Type == "test" {
			names = append(names, t.Name)
		}
	}
	return names
}
