// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package foreign

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// CString encodes s as UTF-8 followed by a single NUL terminator.
// Ill-formed UTF-8 sequences are replaced with U+FFFD so the result is
// always well-formed. A string that already contains a NUL byte cannot be
// terminated unambiguously and is rejected with ErrInteriorNUL.
func CString(s string) ([]byte, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, &cstringError{s: s, at: i}
	}
	enc, err := unicode.UTF8.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(enc)+1)
	copy(out, enc)
	return out, nil
}

// CStringLen returns the encoded length of s including the terminator.
func CStringLen(s string) (int, error) {
	b, err := CString(s)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

type cstringError struct {
	s  string
	at int
}

func (e *cstringError) Error() string {
	return ErrInteriorNUL.Error() + " at offset " + strconv.Itoa(e.at) + " in " + strconv.Quote(e.s)
}

func (e *cstringError) Unwrap() error { return ErrInteriorNUL }
