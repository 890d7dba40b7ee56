// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package run

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"go.chromium.org/wasmtest/internal/command"
	"go.chromium.org/wasmtest/internal/runner/browser"
	"go.chromium.org/wasmtest/internal/toolchain"
)

// Mode describes the action to perform.
type Mode int

const (
	// RunTestsMode indicates that tests should be run and their results reported.
	RunTestsMode Mode = iota
	// ListTestsMode indicates that tests should only be listed.
	ListTestsMode
)

const (
	// DefaultConfigFile is read from the working directory if -config isn't given.
	DefaultConfigFile = "wasmtest.yaml"

	defaultHost = "127.0.0.1"
	defaultPort = 8080
)

// noSanitizer is the -sanitize value disabling sanitizers.
const noSanitizer = -1

// MutableConfig is similar to Config, but its fields are mutable.
// Call Freeze to obtain a Config from MutableConfig.
type MutableConfig struct {
	// See Config for descriptions of these fields.

	Mode      Mode
	TestCases []string

	Release                bool
	Environment            toolchain.Environment
	Headless               bool
	Sanitize               *toolchain.SanitizeVariant
	CompilerFlags          []string
	PrebuiltTestBundlePath string
	PackageDir             string

	Host    string
	Port    int
	Timeout time.Duration

	BrowserPath string
	WasmerPath  string
	NodePath    string
	SwiftPath   string

	ConfigFile string
}

// Config contains configuration for running or listing tests.
// All Config values are frozen and cannot be altered after construction.
type Config struct {
	m *MutableConfig
}

// Mode returns the action to perform.
func (c *Config) Mode() Mode { return c.m.Mode }

// TestCases returns names of test cases to run. Empty means all.
func (c *Config) TestCases() []string { return append([]string(nil), c.m.TestCases...) }

// Environment returns the environment to run tests in.
func (c *Config) Environment() toolchain.Environment { return c.m.Environment }

// Headless returns whether the browser runs without a window.
func (c *Config) Headless() bool { return c.m.Headless }

// PrebuiltTestBundlePath returns the absolute path of the prebuilt bundle,
// or an empty string if the bundle should be built.
func (c *Config) PrebuiltTestBundlePath() string { return c.m.PrebuiltTestBundlePath }

// PackageDir returns the root directory of the package under test.
func (c *Config) PackageDir() string { return c.m.PackageDir }

// Host returns the address the browser harness server listens on.
func (c *Config) Host() string { return c.m.Host }

// Port returns the port the browser harness server listens on.
func (c *Config) Port() int { return c.m.Port }

// Timeout returns how long to wait for browser tests to finish.
func (c *Config) Timeout() time.Duration { return c.m.Timeout }

// BrowserPath returns the browser executable. Empty means auto-detect.
func (c *Config) BrowserPath() string { return c.m.BrowserPath }

// WasmerPath returns the wasmer executable.
func (c *Config) WasmerPath() string { return c.m.WasmerPath }

// NodePath returns the node executable.
func (c *Config) NodePath() string { return c.m.NodePath }

// SwiftPath returns the swift executable.
func (c *Config) SwiftPath() string { return c.m.SwiftPath }

// BuildFlavor returns the parameters to build the test bundle with.
func (c *Config) BuildFlavor() toolchain.BuildFlavor {
	f := toolchain.BuildFlavor{
		Release:       c.m.Release,
		Environment:   c.m.Environment,
		CompilerFlags: append([]string(nil), c.m.CompilerFlags...),
	}
	if c.m.Sanitize != nil {
		s := *c.m.Sanitize
		f.Sanitize = &s
	}
	return f
}

// NewMutableConfig returns a new configuration for mode.
func NewMutableConfig(mode Mode) *MutableConfig {
	return &MutableConfig{
		Mode:       mode,
		Host:       defaultHost,
		Port:       defaultPort,
		Timeout:    browser.DefaultTimeout,
		PackageDir: ".",
		WasmerPath: "wasmer",
		NodePath:   "node",
		SwiftPath:  "swift",
	}
}

// SetFlags adds common run-related flags to f that store values in c.
func (c *MutableConfig) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.Release, "release", false, "build in the release mode")

	envs := command.NewEnumFlag(toolchain.EnvironmentNames, func(v int) { c.Environment = toolchain.Environment(v) }, "wasmer")
	f.Var(envs, "environment", fmt.Sprintf("environment used to run the tests (%s; default %q)", envs.QuotedValues(), envs.Default()))
	f.BoolVar(&c.Headless, "headless", false, "when running browser tests, run the browser in headless mode")

	sanitizers := map[string]int{"none": noSanitizer}
	for name, v := range toolchain.SanitizeNames {
		sanitizers[name] = v
	}
	san := command.NewEnumFlag(sanitizers, func(v int) {
		if v == noSanitizer {
			c.Sanitize = nil
			return
		}
		s := toolchain.SanitizeVariant(v)
		c.Sanitize = &s
	}, "none")
	f.Var(san, "sanitize", fmt.Sprintf("turn on runtime checks (%s; default %q)", san.QuotedValues(), san.Default()))

	xswiftc := command.RepeatedFlag(func(v string) error {
		c.CompilerFlags = append(c.CompilerFlags, v)
		return nil
	})
	f.Var(&xswiftc, "Xswiftc", "pass flag to the Swift compiler (may be repeated)")

	for _, name := range []string{"port", "p"} {
		f.IntVar(&c.Port, name, defaultPort, "HTTP port the testing server runs on for the browser environment")
	}
	for _, name := range []string{"host", "h"} {
		f.StringVar(&c.Host, name, defaultHost, "address the testing server runs on for the browser environment")
	}
	f.Var(command.NewDurationFlag(time.Second, &c.Timeout, browser.DefaultTimeout), "timeout",
		"seconds to wait for browser tests to finish")

	f.StringVar(&c.PrebuiltTestBundlePath, "prebuilt-test-bundle-path", "", "use the given bundle instead of building the test target")
	f.StringVar(&c.PackageDir, "package-path", ".", "root directory of the Swift package")
	f.StringVar(&c.BrowserPath, "browser", "", "browser executable; detected if empty")
	f.StringVar(&c.WasmerPath, "wasmer", "wasmer", "wasmer executable")
	f.StringVar(&c.NodePath, "node", "node", "node executable")
	f.StringVar(&c.SwiftPath, "swift", "swift", "swift executable")
	f.StringVar(&c.ConfigFile, "config", "", "YAML file with default option values; "+DefaultConfigFile+" is used if present")

	if c.Mode == RunTestsMode {
		for _, name := range []string{"list", "l"} {
			f.Var(listFlag{c}, name, "list all available test cases instead of running them")
		}
	}
}

// listFlag switches the mode to ListTestsMode.
type listFlag struct{ c *MutableConfig }

func (f listFlag) IsBoolFlag() bool { return true }

func (f listFlag) String() string {
	if f.c == nil {
		return "false"
	}
	return fmt.Sprint(f.c.Mode == ListTestsMode)
}

func (f listFlag) Set(v string) error {
	switch v {
	case "true", "1":
		f.c.Mode = ListTestsMode
	case "false", "0":
		f.c.Mode = RunTestsMode
	default:
		return errors.Errorf("invalid boolean %q", v)
	}
	return nil
}

// fileConfig is the format of the YAML configuration file.
type fileConfig struct {
	Environment string  `yaml:"environment"`
	Host        *string `yaml:"host"`
	Port        *int    `yaml:"port"`
	Timeout     string  `yaml:"timeout"`
	Headless    *bool   `yaml:"headless"`
	Browser     string  `yaml:"browser"`
	Wasmer      string  `yaml:"wasmer"`
	Node        string  `yaml:"node"`
	Swift       string  `yaml:"swift"`
}

// ApplyFile reads the configuration file and applies its values to options
// that weren't given explicitly on the command line. f must have been parsed.
func (c *MutableConfig) ApplyFile(f *flag.FlagSet) error {
	path := c.ConfigFile
	if path == "" {
		path = filepath.Join(c.PackageDir, DefaultConfigFile)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	var fc fileConfig
	if err := yaml.UnmarshalStrict(b, &fc); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}

	explicit := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })
	unset := func(names ...string) bool {
		for _, n := range names {
			if explicit[n] {
				return false
			}
		}
		return true
	}

	if fc.Environment != "" && unset("environment") {
		v, ok := toolchain.EnvironmentNames[fc.Environment]
		if !ok {
			return errors.Errorf("%s: unknown environment %q", path, fc.Environment)
		}
		c.Environment = toolchain.Environment(v)
	}
	if fc.Host != nil && unset("host", "h") {
		c.Host = *fc.Host
	}
	if fc.Port != nil && unset("port", "p") {
		c.Port = *fc.Port
	}
	if fc.Timeout != "" && unset("timeout") {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return errors.Wrapf(err, "%s: bad timeout", path)
		}
		c.Timeout = d
	}
	if fc.Headless != nil && unset("headless") {
		c.Headless = *fc.Headless
	}
	setString := func(dst *string, v, name string) {
		if v != "" && unset(name) {
			*dst = v
		}
	}
	setString(&c.BrowserPath, fc.Browser, "browser")
	setString(&c.WasmerPath, fc.Wasmer, "wasmer")
	setString(&c.NodePath, fc.Node, "node")
	setString(&c.SwiftPath, fc.Swift, "swift")
	return nil
}

// ValidationError is returned by Validate for options that can't be used.
// Nothing is executed when it is returned.
type ValidationError struct {
	msg string
	// MissingBundle is set to the path of a prebuilt bundle that doesn't
	// exist.
	MissingBundle string
}

func (e *ValidationError) Error() string { return e.msg }

// Validate checks the options and resolves the prebuilt bundle path to an
// absolute one.
func (c *MutableConfig) Validate() error {
	if c.Headless && !c.Environment.IsBrowser() {
		return &ValidationError{msg: "the -headless flag can be applied only for browser environments"}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ValidationError{msg: fmt.Sprintf("invalid port %d", c.Port)}
	}
	if c.Timeout <= 0 {
		return &ValidationError{msg: "timeout must be positive"}
	}
	if c.PrebuiltTestBundlePath != "" {
		p, err := filepath.Abs(c.PrebuiltTestBundlePath)
		if err != nil {
			return &ValidationError{msg: err.Error()}
		}
		c.PrebuiltTestBundlePath = p
		if _, err := os.Stat(p); err != nil {
			return &ValidationError{msg: fmt.Sprintf("No prebuilt binary found at %s", p), MissingBundle: p}
		}
	}
	return nil
}

// Freeze returns a frozen configuration object.
func (c *MutableConfig) Freeze() *Config {
	return &Config{m: c}
}
