// Package yaerrors provides the error type returned by every fallible call in the module.
// An Error carries a status code, the original cause (reachable through Unwrap and
// errors.Is) and a human-readable traceback that grows each time the error is
// wrapped on its way up the call stack.
package yaerrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/YaCodeDev/GoYaRSABench/yalogger"
)

type Error interface {
	error
	Wrap(msg string) Error
	WrapWithLog(msg string, log yalogger.Logger) Error
	Code() int
	Unwrap() error
	UnwrapLastError() string
}

const (
	codeSeparate  = " | "
	errorSeparate = " -> "
)

type yaError struct {
	code      int
	cause     error
	traceback string
}

// FromError wraps cause with a status code and a context message.
func FromError(code int, cause error, wrap string) Error {
	return &yaError{
		code:      code,
		cause:     cause,
		traceback: fmt.Sprintf("%s: %v", wrap, cause),
	}
}

// FromErrorWithLog is FromError that also logs the resulting message at error level.
func FromErrorWithLog(code int, cause error, wrap string, log yalogger.Logger) Error {
	err := FromError(code, cause, wrap)

	log.Error(err.UnwrapLastError())

	return err
}

// FromString creates an Error whose cause is a fresh error built from msg.
func FromString(code int, msg string) Error {
	return &yaError{
		code:      code,
		cause:     errors.New(msg), //nolint:err113
		traceback: msg,
	}
}

// FromStringWithLog is FromString that also logs msg at error level.
func FromStringWithLog(code int, msg string, log yalogger.Logger) Error {
	log.Error(msg)

	return FromString(code, msg)
}

// Configuration reports a setup mistake; errors.Is(err, ErrConfiguration) holds.
func Configuration(msg string) Error {
	return FromError(http.StatusBadRequest, ErrConfiguration, msg)
}

// Exhausted reports a bounded search that ran out of attempts;
// errors.Is(err, ErrKeyGenerationExhausted) holds.
func Exhausted(msg string) Error {
	return FromError(http.StatusServiceUnavailable, ErrKeyGenerationExhausted, msg)
}

// Invariant reports a broken programming contract; errors.Is(err, ErrInvariantViolation) holds.
func Invariant(msg string) Error {
	return FromError(http.StatusInternalServerError, ErrInvariantViolation, msg)
}

// Error returns the code and the traceback, e.g. "400 | outer -> inner: cause".
func (e *yaError) Error() string {
	safetyCheck(&e)

	return fmt.Sprintf("%d%s%s", e.code, codeSeparate, e.traceback)
}

// Unwrap returns the original error that caused this error.
func (e *yaError) Unwrap() error {
	safetyCheck(&e)

	return e.cause
}

// UnwrapLastError returns the outermost message of the traceback.
func (e *yaError) UnwrapLastError() string {
	safetyCheck(&e)

	end := strings.Index(e.traceback, errorSeparate)
	if end == -1 {
		return e.traceback
	}

	return e.traceback[:end]
}

// Wrap prepends msg to the traceback. Call it each time the error is returned
// to a higher level in the call stack.
func (e *yaError) Wrap(msg string) Error {
	safetyCheck(&e)
	e.traceback = fmt.Sprintf("%s%s%s", msg, errorSeparate, e.traceback)

	return e
}

// WrapWithLog is Wrap that also logs msg at error level.
func (e *yaError) WrapWithLog(msg string, log yalogger.Logger) Error {
	log.Error(msg)

	return e.Wrap(msg)
}

// Code returns the status code associated with this error.
func (e *yaError) Code() int {
	safetyCheck(&e)

	return e.code
}

// safetyCheck replaces a nil receiver with a teapot error so that methods on an
// unchecked nil *yaError do not panic.
func safetyCheck(err **yaError) {
	if *err == nil {
		*err = &yaError{
			code:      http.StatusTeapot,
			cause:     ErrTeapot,
			traceback: ErrTeapot.Error(),
		}
	}
}
