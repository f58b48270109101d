// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"errors"
	"strings"
)

// Sentinel errors for patch operations. Use errors.Is in callers.
var (
	// ErrNotFound means archive or replacement directory is missing or has wrong type.
	ErrNotFound = errors.New("not found")
	// ErrIOFailure means reading, writing, or copying archive or file content failed.
	ErrIOFailure = errors.New("i/o failure")
	// ErrRenameFailure means final install of the rewritten archive failed.
	ErrRenameFailure = errors.New("rename failure")
	// ErrKeyCollision means two entries resolve to the same lookup key.
	ErrKeyCollision = errors.New("lookup key collision")
	// ErrEntryNotFound means the archive has no entry with requested name.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidOptions means patch options are invalid (bad rules or compression level).
	ErrInvalidOptions = errors.New("invalid options")
)

// ErrorKind classifies patch failures.
type ErrorKind uint8

// Patch failure kinds.
const (
	// KindUnknown is reported for errors not produced by this package.
	KindUnknown ErrorKind = iota
	// KindNotFound is reported before any mutation when an input path is missing.
	KindNotFound
	// KindIOFailure is reported when the write phase failed and the temporary archive was removed.
	KindIOFailure
	// KindRenameFailure is reported when the temporary archive could not be installed.
	KindRenameFailure
	// KindCollision is reported when replacement or archive names are ambiguous.
	KindCollision
	// KindInvalidArgument is reported for invalid options.
	KindInvalidArgument
)

// String returns stable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindIOFailure:
		return "IOFailure"
	case KindRenameFailure:
		return "RenameFailure"
	case KindCollision:
		return "Collision"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// sentinel returns package sentinel error matching kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindIOFailure:
		return ErrIOFailure
	case KindRenameFailure:
		return ErrRenameFailure
	case KindCollision:
		return ErrKeyCollision
	case KindInvalidArgument:
		return ErrInvalidOptions
	default:
		return nil
	}
}

// Error is structured patch failure (kind + message).
type Error struct {
	// Err is underlying cause.
	Err error
	// Op is short operation name, e.g. "open archive".
	Op string
	// Path is filesystem path or entry name the operation worked on.
	Path string
	// Kind classifies failure.
	Kind ErrorKind
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinel, so errors.Is(err, ErrIOFailure) works for wrapped causes too.
func (e *Error) Is(target error) bool {
	sentinel := e.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// KindOf extracts failure kind from err chain.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}

	return KindUnknown
}

// newError builds structured error.
func newError(kind ErrorKind, op string, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
