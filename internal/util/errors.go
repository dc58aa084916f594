package util

import (
	"context"
	"errors"
)

type Temporary interface {
	Temporary() bool
}

// IsTemporaryError reports whether the error is transient (network failure, timeout, server error) and the operation is
// worth retrying on the next update.
func IsTemporaryError(err error) bool {
	for err := err; err != nil; err = errors.Unwrap(err) {
		if err, ok := err.(Temporary); ok && err.Temporary() {
			return true
		}
	}
	return errors.Is(err, context.DeadlineExceeded)
}

type temporaryError struct {
	error error
}

var _ Temporary = temporaryError{}

func MakeTemporaryError(err error) error {
	return temporaryError{error: err}
}

func (e temporaryError) Temporary() bool {
	return true
}

func (e temporaryError) Error() string {
	return e.error.Error()
}

func (e temporaryError) Unwrap() error {
	return e.error
}
