package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string

	cause error
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap returns a coded error which keeps err as its cause. The cause is
// reachable through errors.Is and errors.As but never shown to clients.
func Wrap(err error, code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...), cause: err}
}

func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e Error) Unwrap() error {
	return e.cause
}

// Is reports whether any error in err's chain is an Error with the given code.
func Is(err error, code Code) bool {
	var errx Error
	if !errors.As(err, &errx) {
		return false
	}

	return errx.Code == code
}
