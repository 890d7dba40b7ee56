// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil formats command lines for logs and error messages.
package shutil

import (
	"strings"
)

// isSafe reports whether c can appear unquoted in a shell word. Leading "="
// is additionally unsafe in zsh, see isSafeWord.
func isSafe(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.ContainsRune("-_@%+:,./=", c)
}

func isSafeWord(s string) bool {
	if s == "" || s[0] == '=' {
		return false
	}
	for _, c := range s {
		if !isSafe(c) {
			return false
		}
	}
	return true
}

// Escape quotes s so that a POSIX shell reads it back as a single word.
// Words that need no quoting are returned as is.
func Escape(s string) string {
	if isSafeWord(s) {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, c := range s {
		if c == '\'' {
			sb.WriteString(`'"'"'`)
			continue
		}
		sb.WriteRune(c)
	}
	sb.WriteByte('\'')
	return sb.String()
}

// EscapeSlice escapes each of args and joins them into a command line.
func EscapeSlice(args []string) string {
	words := make([]string, 0, len(args))
	for _, a := range args {
		words = append(words, Escape(a))
	}
	return strings.Join(words, " ")
}
