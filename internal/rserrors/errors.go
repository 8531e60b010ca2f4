// Copyright 2025 The refstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rserrors defines the structural error taxonomy shared by every
// core package. Callers switch on Kind, not on error strings.
package rserrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags an Error with the structural category from spec §7, so callers
// can branch on it instead of matching message text.
type Kind int

const (
	// KindUnknown is the zero value; never returned deliberately.
	KindUnknown Kind = iota
	// KindNotFound covers an absent reference, bundle, registry or manifest.
	KindNotFound
	// KindConflict covers an already-existing name or a reserved name.
	KindConflict
	// KindInvalidInput covers malformed names, unknown config keys and
	// bundles referencing unresolvable members.
	KindInvalidInput
	// KindMissingInfra covers git-not-installed and an unresolvable data
	// directory.
	KindMissingInfra
	// KindVCSFailure covers any non-zero git exit.
	KindVCSFailure
	// KindSyncFailure covers a single materialization-entry failure.
	KindSyncFailure
	// KindIO covers a file read/write/mkdir failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindMissingInfra:
		return "missing_infra"
	case KindVCSFailure:
		return "vcs_failure"
	case KindSyncFailure:
		return "sync_failure"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the structural error value every core operation returns on
// failure. It wraps an optional cause so errors.Unwrap/errors.Is keep
// working through it.
type Error struct {
	Kind    Kind
	Message string
	Path    string // set for KindIO errors; the offending path
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare Error with no cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new Error of the given kind. cause is captured
// with errors.WithStack so the original failure site's stack trace
// survives even though Error.Error() only ever prints its message.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: errors.WithStack(cause)}
}

// IO builds a KindIO error carrying the offending path.
func IO(path string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindIO, Message: fmt.Sprintf(format, args...), Path: path, Cause: errors.WithStack(cause)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}
