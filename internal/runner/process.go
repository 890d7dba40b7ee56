// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runner

import (
	"context"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"go.chromium.org/wasmtest/internal/logging"
	"go.chromium.org/wasmtest/internal/shutil"
)

// waitDelay bounds how long Wait keeps copying output after the process
// exited, e.g. when an orphaned grandchild holds the pipes open.
const waitDelay = 5 * time.Second

// Process is a child process started in its own session so that it can be
// killed along with everything it spawned.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// StartProcess starts args in a new session, writing its stdout and stderr to
// the given writers. It returns *SpawnError if the process can't be started.
func StartProcess(ctx context.Context, args []string, dir string, stdout, stderr io.Writer) (*Process, error) {
	logging.Debug(ctx, "Running ", shutil.EscapeSlice(args))

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.WaitDelay = waitDelay
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: args, Err: err}
	}

	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// Pid returns the process ID.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done returns a channel that is closed when the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Kill kills the process and all processes in its session, then waits for
// it to exit.
func (p *Process) Kill() {
	select {
	case <-p.done:
	default:
		KillSession(p.Pid(), unix.SIGKILL)
		<-p.done
	}
	// Clean up descendants that outlived the session leader.
	KillSession(p.Pid(), unix.SIGKILL)
}

// Wait waits for the process to exit. If ctx is canceled first, the process
// is killed and ctx.Err() is returned. Otherwise it reports whether the
// process exited with status 0; a non-zero exit status is not an error.
func (p *Process) Wait(ctx context.Context) (exitOK bool, err error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		p.Kill()
		return false, ctx.Err()
	}
	if p.err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(p.err, &exitErr) {
		logging.Debugf(ctx, "Process %d exited: %v", p.Pid(), exitErr)
		return false, nil
	}
	return false, errors.Wrap(p.err, "failed waiting for process")
}

// RunProcess starts args and waits for it to finish. See StartProcess and
// Process.Wait.
func RunProcess(ctx context.Context, args []string, dir string, stdout, stderr io.Writer) (exitOK bool, err error) {
	p, err := StartProcess(ctx, args, dir, stdout, stderr)
	if err != nil {
		return false, err
	}
	return p.Wait(ctx)
}

// KillSession makes a best-effort attempt to kill all processes in session sid.
// It makes several passes over the list of running processes, sending sig to any
// that are part of the session. After it doesn't find any new processes, it returns.
func KillSession(sid int, sig unix.Signal) {
	const maxPasses = 3
	for i := 0; i < maxPasses; i++ {
		pids, err := process.Pids()
		if err != nil {
			return
		}
		n := 0
		for _, pid := range pids {
			pid := int(pid)
			if s, err := unix.Getsid(pid); err == nil && s == sid {
				unix.Kill(pid, sig)
				n++
			}
		}
		if n == 0 {
			return
		}
	}
}
