// Package apperr defines the typed error taxonomy shared by the domain
// layer and the HTTP surface.
//
// Domain code (aggregate methods, stores, token handling) fails fast with
// one of these errors at the point of violation; handlers translate them
// into a status code and JSON body without inspecting error strings.
// Anything that is not an *apperr.Error is treated as an internal error and
// its details are logged, never sent to the client.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain error with a stable HTTP status.
type Error struct {
	Status  int
	Message string
	// Err is an optional wrapped cause, kept for logging only.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest reports malformed or missing input (including malformed
// pagination cursors and empty patches).
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden reports an authenticated caller attempting an action they are
// not allowed to perform (non-owner on owner-only operations, owner
// requesting to join their own idea).
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// NotFound reports a missing idea, pending request, or team member.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict reports duplicate pending requests, duplicate memberships, and
// unique-index collisions.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Internal reports a server-side failure (storage errors, slug generation
// exhaustion). The wrapped cause is for logs; clients see only msg.
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// From converts any error into an *Error. Non-apperr errors become a
// generic Internal so storage details never leak to clients.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("Something went wrong", err)
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	return From(err).Status
}
