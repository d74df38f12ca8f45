package apierr

import (
	"errors"
	"fmt"
)

// Stable application codes carried in the failure envelope.
const (
	CodeValidation    = 40001
	CodeMalformed     = 40002
	CodeUnknownAction = 40003
	CodeNotFound      = 40401

	CodeReadFailed       = 50001
	CodeWriteFailed      = 50002
	CodeStoreCredentials = 50011
	CodeStorePermission  = 50012
	CodeStoreBucket      = 50013
	CodeStoreEndpoint    = 50014
)

type Error struct {
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("api error %d", e.Code)
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status, code int, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Newf builds an error with a fixed client-facing message.
func Newf(status, code int, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

// As reports whether err is or wraps an *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}
