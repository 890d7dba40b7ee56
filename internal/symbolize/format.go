// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package symbolize

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// WriteFrames writes items to w, one frame per two lines:
//
//	Test.foo() -> ()
//	    at wasm-function[12]:0x1f3 (webassembly)
func WriteFrames(w io.Writer, items []StackTraceItem) error {
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "%s\n    at %s (%v)\n", item.Symbol, item.Location, item.Kind); err != nil {
			return err
		}
	}
	return nil
}

// Symbolize reads crash text from r and writes its symbolized stack trace to
// w. If no frames are recognized, the text is copied to w unchanged.
// It returns the number of frames written.
func Symbolize(r io.Reader, w io.Writer) (int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read crash text")
	}
	items := Parse(string(b))
	if len(items) == 0 {
		_, err := w.Write(b)
		return 0, err
	}
	if err := WriteFrames(w, items); err != nil {
		return 0, errors.Wrap(err, "failed to write frames")
	}
	return len(items), nil
}
