// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browser

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/runner"
)

// Launcher starts a browser showing a page.
type Launcher interface {
	Launch(ctx context.Context, url string) (Instance, error)
}

// Instance is a running browser.
type Instance interface {
	// Done returns a channel that is closed when the browser exits.
	Done() <-chan struct{}
	// Close kills the browser and everything it started. It is safe to
	// call Close more than once.
	Close() error
}

// candidates lists browser executables looked up in PATH, in order of
// preference.
var candidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"firefox",
}

// ExecLauncher launches a locally installed browser with a throwaway
// profile.
type ExecLauncher struct {
	// Path is the browser executable. If empty, one of the known browsers
	// is looked up in PATH.
	Path     string
	Headless bool
	// Output receives the browser's own stdout and stderr. Nil discards it.
	Output io.Writer
}

var _ Launcher = (*ExecLauncher)(nil)

// geteuid is replaced by unit tests.
var geteuid = os.Geteuid

// findBrowser returns the browser executable to use.
func (l *ExecLauncher) findBrowser() (string, error) {
	if l.Path != "" {
		return l.Path, nil
	}
	for _, name := range candidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", &runner.SpawnError{
		Cmd: append([]string(nil), candidates...),
		Err: errors.New("no browser found in PATH"),
	}
}

func isFirefox(path string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(path)), "firefox")
}

// browserArgs returns the command line opening url with a profile in
// profileDir.
func (l *ExecLauncher) browserArgs(path, profileDir, url string) []string {
	args := []string{path}
	if isFirefox(path) {
		args = append(args, "-profile", profileDir, "-no-remote", "-new-instance")
		if l.Headless {
			args = append(args, "-headless")
		}
		return append(args, url)
	}
	args = append(args,
		"--user-data-dir="+profileDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-extensions",
	)
	// Chromium refuses to start its sandbox as root.
	if geteuid() == 0 {
		args = append(args, "--no-sandbox")
	}
	if l.Headless {
		args = append(args, "--headless=new", "--remote-debugging-port=0")
	}
	return append(args, url)
}

// Launch starts the browser at url.
func (l *ExecLauncher) Launch(ctx context.Context, url string) (Instance, error) {
	path, err := l.findBrowser()
	if err != nil {
		return nil, err
	}
	profileDir, err := os.MkdirTemp("", "wasmtest_profile.")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create browser profile")
	}

	out := l.Output
	if out == nil {
		out = io.Discard
	}
	logging.Infof(ctx, "Launching %s", filepath.Base(path))
	p, err := runner.StartProcess(ctx, l.browserArgs(path, profileDir, url), "", out, out)
	if err != nil {
		os.RemoveAll(profileDir)
		return nil, err
	}
	return &execInstance{proc: p, profileDir: profileDir}, nil
}

type execInstance struct {
	proc       *runner.Process
	profileDir string
	closed     bool
}

func (b *execInstance) Done() <-chan struct{} {
	return b.proc.Done()
}

func (b *execInstance) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	killTree(int32(b.proc.Pid()))
	b.proc.Kill()
	return os.RemoveAll(b.profileDir)
}

// killTree kills pid and its descendants. Browsers may daemonize helpers
// into new sessions, so the session kill alone doesn't reach all of them.
func killTree(pid int32) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return
	}
	if children, err := p.Children(); err == nil {
		for _, c := range children {
			killTree(c.Pid)
		}
	}
	unix.Kill(int(pid), unix.SIGKILL)
}
