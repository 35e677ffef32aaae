package pkgerror

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned by stores when an id or batch id matches nothing.
var ErrNotFound = errors.New("resource not found")

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	CodeInternal      Code = iota // storage or encoding failure
	CodeInvalidFormat             // body is not valid JSON
	CodeInvalidInput              // body parsed but violates a rule
	CodeNotFound                  // id or batch id unknown
	CodeTimeout                   // caller gave up before the lock was taken
	CodeBusy                      // lock wait expired
)

//nolint:gochecknoglobals // lookup table
var codeInfo = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeTimeout:       {"ERROR_CODE_TIMEOUT", http.StatusRequestTimeout},
	CodeBusy:          {"ERROR_CODE_BUSY", http.StatusServiceUnavailable},
}

func (c Code) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return codeInfo[CodeInternal].name
}

// Error wraps an underlying error with a client-safe message and a Code.
type Error struct {
	err  error
	msg  string
	code Code
}

// Error implements the error interface. The underlying error wins so logs
// keep the real cause; Msg is what clients see.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.msg
}

// Msg returns the client-safe message.
func (e *Error) Msg() string {
	return e.msg
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if info, ok := codeInfo[e.code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", code: CodeInternal}
}

// NewBusiness creates an error whose message is shown to the client as is.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, code: code}
}

// NewInvalidInput creates a validation error carrying err as its cause.
func NewInvalidInput(err error) error {
	return &Error{err: err, msg: "validation error", code: CodeInvalidInput}
}

// NewInvalidFormat creates an error for a body that is not valid JSON.
func NewInvalidFormat() error {
	return &Error{msg: "invalid request body", code: CodeInvalidFormat}
}

// NewBusy creates an error for a resource that stayed locked past its deadline.
func NewBusy(err error) error {
	return &Error{err: err, msg: "resource is busy, retry later", code: CodeBusy}
}
