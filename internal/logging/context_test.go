// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recordLogger struct {
	logs []string
}

func (r *recordLogger) Log(level Level, ts time.Time, msg string) {
	r.logs = append(r.logs, level.String()+":"+msg)
}

func TestLogWithoutLogger(t *testing.T) {
	// Logging to a context without a logger is a no-op.
	ctx := context.Background()
	Info(ctx, "a")
	Debugf(ctx, "%s", "b")
}

func TestAttachLogger(t *testing.T) {
	parent := &recordLogger{}
	child := &recordLogger{}

	ctx := AttachLogger(context.Background(), parent)
	Info(ctx, "to parent")

	cctx := AttachLogger(ctx, child)
	Infof(cctx, "to %s", "both")
	Debug(cctx, "debug")
	Warningf(cctx, "careful %d", 1)

	if diff := cmp.Diff(parent.logs, []string{"info:to parent", "info:to both", "debug:debug", "warning:careful 1"}); diff != "" {
		t.Error("Parent logs mismatch (-got +want):\n", diff)
	}
	if diff := cmp.Diff(child.logs, []string{"info:to both", "debug:debug", "warning:careful 1"}); diff != "" {
		t.Error("Child logs mismatch (-got +want):\n", diff)
	}
}

func TestAttachLoggerNoPropagation(t *testing.T) {
	parent := &recordLogger{}
	child := &recordLogger{}

	ctx := AttachLogger(context.Background(), parent)
	ctx = AttachLoggerNoPropagation(ctx, child)
	Info(ctx, "x")

	if len(parent.logs) != 0 {
		t.Errorf("Parent got %q; want nothing", parent.logs)
	}
	if diff := cmp.Diff(child.logs, []string{"info:x"}); diff != "" {
		t.Error("Child logs mismatch (-got +want):\n", diff)
	}
}

func TestInvalidUTF8Dropped(t *testing.T) {
	l := &recordLogger{}
	ctx := AttachLogger(context.Background(), l)
	Info(ctx, "a\xffb")
	if diff := cmp.Diff(l.logs, []string{"info:ab"}); diff != "" {
		t.Error("Logs mismatch (-got +want):\n", diff)
	}
}
