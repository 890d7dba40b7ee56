// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements the wasmtest executable, used to build and run
// test bundles compiled to WebAssembly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"go.chromium.org/wasmtest/internal/command"
	"go.chromium.org/wasmtest/internal/logging"
)

// Version is the version info of this command. It is filled in at link time.
var Version = "<unknown>"

// newLogger creates a logging.Logger based on the supplied command-line flags.
func newLogger(verbose, logTime bool) logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.NewSinkLogger(level, logTime, logging.NewWriterSink(os.Stderr))
}

// installSignalHandler cancels the running command on the first signal and
// restores the terminal state, which a browser or runtime may have altered.
func installSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	var st *term.State
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		var err error
		if st, err = term.GetState(fd); err != nil {
			logging.Info(ctx, "Failed to get terminal state: ", err)
		}
	}

	command.InstallSignalHandler(os.Stderr, func(os.Signal) {
		if st != nil {
			term.Restore(fd, st)
		}
		cancel()
	})
}

// doMain implements the main body of the program. It's a separate function so
// that its deferred functions will run before os.Exit makes the program exit
// immediately.
func doMain() int {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(newTestCmd(os.Stdout, os.Stderr), "")
	subcommands.Register(newListCmd(os.Stdout, os.Stderr), "")
	subcommands.Register(&symbolizeCmd{stdout: os.Stdout}, "")

	version := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "use verbose logging")
	logTime := flag.Bool("logtime", false, "include date/time headers in logs")
	logFile := flag.String("logfile", "", "also write all logs as JSON lines to this file")
	flag.Parse()

	if *version {
		fmt.Printf("wasmtest version %s\n", Version)
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logging.AttachLogger(ctx, newLogger(*verbose, *logTime))

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			logging.Info(ctx, "Failed to create log file: ", err)
			return int(subcommands.ExitFailure)
		}
		defer f.Close()
		zl := logging.NewJSONZapLogger(f)
		defer zl.Sync()
		ctx = logging.AttachLogger(ctx, zl)
	}

	installSignalHandler(ctx, cancel)

	return int(subcommands.Execute(ctx))
}

func main() {
	os.Exit(doMain())
}
