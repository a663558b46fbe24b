// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes chat errors for handling at the UI boundary.
type ErrorKind int

const (
	// ErrKindValidation covers empty input and send-while-in-flight.
	// These are silently ignored at the UI boundary and never reach a
	// session's error state.
	ErrKindValidation ErrorKind = iota

	// ErrKindBackendUnavailable means a generation request could not
	// even be accepted. Surfaced as a visible error; nothing committed.
	ErrKindBackendUnavailable

	// ErrKindStorage covers chat creation, history load, persistence,
	// and pin-toggle failures.
	ErrKindStorage

	// ErrKindSearchUnavailable is a retrieval failure during
	// augmentation. The send is aborted entirely rather than falling
	// back to unaugmented generation.
	ErrKindSearchUnavailable
)

// Error is a session-scoped chat error. One session's error never
// affects another session's error state.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// =============================================================================
// SENTINELS AND PREDICATES
// =============================================================================

// ErrMessageNotFound is returned when a pin toggle targets an unknown
// message ID.
var ErrMessageNotFound = &Error{Kind: ErrKindStorage, Message: "message not found"}

// Is supports errors.Is comparison against chat error sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf returns the ErrorKind of err, or ok=false if err is not a
// chat error.
func KindOf(err error) (ErrorKind, bool) {
	var chatErr *Error
	if errors.As(err, &chatErr) {
		return chatErr.Kind, true
	}
	return 0, false
}

// IsBackendUnavailable reports whether err is a backend-acceptance
// failure.
func IsBackendUnavailable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == ErrKindBackendUnavailable
}

// IsStorageError reports whether err is a persistence failure.
func IsStorageError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == ErrKindStorage
}

// IsSearchUnavailable reports whether err is a retrieval failure.
func IsSearchUnavailable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == ErrKindSearchUnavailable
}
