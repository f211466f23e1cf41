package errors

import (
	"github.com/cockroachdb/errors"
)

// New returns an error with the given message and a stack trace.
func New(msg string) error {
	return errors.NewWithDepth(1, msg)
}

// Newf returns a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return errors.NewWithDepthf(1, format, args...)
}

// Wrap annotates err with msg. It returns nil if err is nil.
func Wrap(err error, msg string) error {
	return errors.WrapWithDepth(1, err, msg)
}

// Wrapf annotates err with a formatted message. It returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return errors.WrapWithDepthf(1, err, format, args...)
}

// Mark attaches reference as an additional identity of err, so that
// errors.Is(result, reference) holds without changing the message.
func Mark(err error, reference error) error {
	return errors.Mark(err, reference)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
