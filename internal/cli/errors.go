// Package cli provides user-facing error types and terminal text helpers.
package cli

import (
	"errors"
	"fmt"
)

// UserError is a failure caused by user input or the environment (bad
// selection expression, no TTY, cancelled picker). The top-level driver
// prints it as a single line and exits with status 2.
type UserError struct {
	msg string
}

func (e *UserError) Error() string { return e.msg }

// Errorf builds a UserError from a format string.
func Errorf(format string, args ...any) *UserError {
	return &UserError{msg: fmt.Sprintf(format, args...)}
}

// WrapUser converts err into a UserError carrying a context prefix.
func WrapUser(context string, err error) *UserError {
	return &UserError{msg: fmt.Sprintf("%s: %v", context, err)}
}

// ErrCancelled signals that the user quit the interactive picker.
var ErrCancelled = Errorf("selection cancelled")

// IsUser reports whether err is (or wraps) a UserError.
func IsUser(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
