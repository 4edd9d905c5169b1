package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that a referenced record (ruleset, campaign,
// overlay, ...) does not exist for the requesting user.
var ErrNotFound = errors.New("not found")

// ValidationError reports required fields that were absent from a
// request payload.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s required", strings.Join(e.Missing, ", "))
}

// TypeError reports a structured field supplied with the wrong
// container shape (object where array expected, and so on). Kept
// distinct from ValidationError so callers can tell the two apart.
type TypeError struct {
	Field string
	Want  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s must be %s", e.Field, e.Want)
}
