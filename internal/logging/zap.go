// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is a Logger that forwards logs to a zap.Logger as structured
// entries.
type ZapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps z.
func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

// NewJSONZapLogger creates a ZapLogger writing one JSON object per log to w.
// All levels, including debug, are recorded.
func NewJSONZapLogger(w io.Writer) *ZapLogger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
	return NewZapLogger(zap.New(core))
}

// Log records a log entry with the original timestamp attached.
func (l *ZapLogger) Log(level Level, ts time.Time, msg string) {
	if ce := l.z.Check(zapLevel(level), msg); ce != nil {
		ce.Time = ts
		ce.Write()
	}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
