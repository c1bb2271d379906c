// Package transport defines the contract between a handle and the
// component performing the actual transfer.
package transport

import (
	"context"
	"fmt"
)

// Options configure a single transfer.
type Options struct {
	URI string

	// Settings are transport-specific key/value settings.
	Settings Settings

	// IncludeHeaders asks for response heads to be included in the
	// returned text, ahead of the body.
	IncludeHeaders bool

	// HeaderLines are outgoing "Name: value" lines, one per value.
	HeaderLines []string
}

// Opener acquires transfer sessions.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// Session performs transfers. A session is owned by a single handle.
type Session interface {
	// Execute performs the transfer and returns the raw response text.
	// Failures are reported as *[Error].
	Execute(ctx context.Context, opts Options) (string, error)
	Close() error
}

type Code int

const (
	CodeUnknown Code = iota
	CodeMalformedURI
	CodeUnsupportedScheme
	CodeResolveFailed
	CodeConnectFailed
	CodeWriteFailed
	CodeReadFailed
	CodeTimeout
	CodeMalformedResponse
	CodeTooManyRedirects
	CodeSessionClosed
	CodeBadSetting
)

var codeNames = map[Code]string{
	CodeUnknown:           "unknown",
	CodeMalformedURI:      "malformed uri",
	CodeUnsupportedScheme: "unsupported scheme",
	CodeResolveFailed:     "could not resolve host",
	CodeConnectFailed:     "could not connect",
	CodeWriteFailed:       "send failure",
	CodeReadFailed:        "receive failure",
	CodeTimeout:           "operation timed out",
	CodeMalformedResponse: "malformed response",
	CodeTooManyRedirects:  "too many redirects",
	CodeSessionClosed:     "session closed",
	CodeBadSetting:        "bad setting",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a transfer failure with a transport-specific code.
type Error struct {
	Code    Code
	Message string

	cause error
}

func NewError(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("transport error %d (%s): %s", int(e.Code), e.Code, e.Message)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Cause() error  { return e.cause }
func (e *Error) Unwrap() error { return e.cause }
