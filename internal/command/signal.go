// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

var selfName = filepath.Base(os.Args[0])

// InstallSignalHandler installs a handler for SIGINT and SIGTERM. On the first
// signal, callback is called; it is expected to cancel the running operation
// so that its cleanup (killing child processes, closing listeners) runs. On a
// second signal, child processes are terminated and the process exits
// immediately. out is the output stream to write messages to (typically
// stderr).
func InstallSignalHandler(out io.Writer, callback func(sig os.Signal)) {
	ch := make(chan os.Signal, 2)
	go func() {
		sig := <-ch
		fmt.Fprintf(out, "\n%s: Caught %v signal; cleaning up\n", selfName, sig)
		callback(sig)

		sig = <-ch
		fmt.Fprintf(out, "\n%s: Caught %v signal again; exiting\n", selfName, sig)
		terminateChildren(out)
		os.Exit(1)
	}()
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}

// terminateChildren sends SIGTERM to all direct child processes.
func terminateChildren(out io.Writer) {
	procs, err := process.Processes()
	if err != nil {
		fmt.Fprintf(out, "Failed to terminate subprocesses: %v\n", err)
		return
	}

	selfPid := int32(os.Getpid())
	for _, proc := range procs {
		ppid, err := proc.Ppid()
		if err != nil {
			continue
		}
		if ppid == selfPid {
			proc.Terminate()
		}
	}
}
