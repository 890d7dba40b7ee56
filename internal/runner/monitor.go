// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"sync"
)

// maxTraceLines is the maximum number of lines kept after a trap message.
const maxTraceLines = 256

var (
	// failureRE matches lines XCTest prints for failed tests.
	failureRE = regexp.MustCompile(`^(?:Test Case '.+' failed|Test Suite '.+' failed|.*Fatal error: )`)

	// stackOverflowRE matches the message of the stack sanitizer hook.
	stackOverflowRE = regexp.MustCompile(`Detected stack-buffer-overflow`)

	// testNameRE matches test names printed by XCTest with -l.
	testNameRE = regexp.MustCompile(`^\S+/\S+$`)
)

// Monitor scans output of a bundle line by line while copying it to the
// user. It detects test failures and sanitizer traps.
type Monitor struct {
	mu     sync.Mutex
	raw    strings.Builder
	failed bool

	// scanTraps is false if traps are reported with SetTrap instead of
	// being recognized in the output.
	scanTraps bool
	trapKind  TrapKind
	trapMsg   string
	trapSeen  bool
	trapTrace []string
	reported  *Trap
}

// NewMonitor returns a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{scanTraps: true}
}

// NewEventMonitor returns a Monitor for runtimes that report traps out of
// band. Output mentioning a trap is treated as ordinary text; call SetTrap
// when the runtime reports one.
func NewEventMonitor() *Monitor {
	return &Monitor{}
}

// SetTrap records a trap reported by the runtime. Only the first trap is
// kept.
func (m *Monitor) SetTrap(t *Trap) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reported == nil {
		m.reported = t
	}
}

// Writer returns a writer that copies data to out and feeds complete lines
// to m. Each stream (e.g. stdout and stderr) needs its own writer. Close the
// writer to flush an unterminated last line.
func (m *Monitor) Writer(out io.Writer) io.WriteCloser {
	return &lineWriter{m: m, out: out}
}

// ScanLine feeds a single line, without its terminator, to m.
func (m *Monitor) ScanLine(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanLocked(line)
}

func (m *Monitor) scanLocked(line string) {
	m.raw.WriteString(line)
	m.raw.WriteByte('\n')

	if !m.scanTraps {
		if failureRE.MatchString(line) {
			m.failed = true
		}
		return
	}
	if m.trapSeen {
		if len(m.trapTrace) < maxTraceLines {
			m.trapTrace = append(m.trapTrace, line)
		}
		return
	}
	if stackOverflowRE.MatchString(line) {
		m.trapSeen = true
		m.trapKind = StackOverflow
		m.trapMsg = strings.TrimSpace(line)
		return
	}
	if failureRE.MatchString(line) {
		m.failed = true
	}
}

// Failed reports whether a test failure was seen.
func (m *Monitor) Failed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// Trap returns the trap seen in the output, or nil.
func (m *Monitor) Trap() *Trap {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reported != nil {
		return m.reported
	}
	if !m.trapSeen {
		return nil
	}
	return NewTrap(m.trapKind, m.trapMsg, strings.Join(m.trapTrace, "\n"))
}

// Output returns all lines scanned so far.
func (m *Monitor) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw.String()
}

// Outcome returns the outcome of a run whose process exited successfully if
// exitOK is true.
func (m *Monitor) Outcome(exitOK bool) *Outcome {
	trap := m.Trap()
	return &Outcome{
		Passed:    exitOK && !m.Failed() && trap == nil,
		RawOutput: m.Output(),
		Trap:      trap,
	}
}

// TestNames extracts test names from the output of a listing run.
func (m *Monitor) TestNames() []string {
	return ParseTestNames(m.Output())
}

// ParseTestNames extracts test names from XCTest listing output.
func ParseTestNames(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if testNameRE.MatchString(line) {
			names = append(names, line)
		}
	}
	return names
}

// lineWriter splits a stream into lines for a Monitor.
type lineWriter struct {
	m       *Monitor
	out     io.Writer
	partial []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.out != nil {
		if _, err := w.out.Write(p); err != nil {
			return 0, err
		}
	}

	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.m.scanLocked(strings.TrimSuffix(string(w.partial[:i]), "\r"))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Close() error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	if len(w.partial) > 0 {
		w.m.scanLocked(string(w.partial))
		w.partial = nil
	}
	return nil
}
