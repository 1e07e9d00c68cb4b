// Package apperr classifies errors so the HTTP layer can choose a status
// code without knowing every store's sentinels.
package apperr

import (
	"errors"

	"github.com/aiesociety/aiesweb/internal/app/system/schema"
)

// Kind is the class of an error.
type Kind int

const (
	Internal Kind = iota
	Invalid
	NotFound
	Conflict
	Unauthorized
	Forbidden
	TooManyRequests
)

// Error is a classified error with a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// New returns a classified error. Stores keep the result in package-level
// sentinels and callers compare with errors.Is.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

// KindOf returns the class of err. Validation failures are Invalid and
// unclassified errors are Internal.
func KindOf(err error) Kind {
	var fe schema.FieldErrors
	if errors.As(err, &fe) {
		return Invalid
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}
