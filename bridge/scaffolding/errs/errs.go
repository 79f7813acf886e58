// Package errs provides the application error type returned by bridges.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode represents an application error code with its HTTP mapping.
type ErrCode struct {
	value  int
	name   string
	status int
}

func (ec ErrCode) Value() int {
	return ec.value
}

func (ec ErrCode) String() string {
	return ec.name
}

// HTTPStatus is the status code written for errors carrying this code.
func (ec ErrCode) HTTPStatus() int {
	return ec.status
}

// MarshalText lets codes serialize by name.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.name), nil
}

var (
	OK                 = ErrCode{value: 0, name: "ok", status: http.StatusOK}
	InvalidArgument    = ErrCode{value: 3, name: "invalid_argument", status: http.StatusBadRequest}
	NotFound           = ErrCode{value: 5, name: "not_found", status: http.StatusNotFound}
	AlreadyExists      = ErrCode{value: 6, name: "already_exists", status: http.StatusConflict}
	PermissionDenied   = ErrCode{value: 7, name: "permission_denied", status: http.StatusForbidden}
	FailedPrecondition = ErrCode{value: 9, name: "failed_precondition", status: http.StatusConflict}
	TooLarge           = ErrCode{value: 11, name: "too_large", status: http.StatusRequestEntityTooLarge}
	Internal           = ErrCode{value: 13, name: "internal", status: http.StatusInternalServerError}
	Unavailable        = ErrCode{value: 14, name: "unavailable", status: http.StatusServiceUnavailable}
	Unauthenticated    = ErrCode{value: 16, name: "unauthenticated", status: http.StatusUnauthorized}

	// InternalOnlyLog is logged in full but answered with a generic message.
	InternalOnlyLog = ErrCode{value: 17, name: "internal_only_log", status: http.StatusInternalServerError}
)

// Error represents an error in the system.
type Error struct {
	Code     ErrCode `json:"code"`
	Message  string  `json:"error"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New constructs an error based on an app error.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf constructs an error based on a error message.
func Newf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Equal provides support for the go-cmp package and testing.
func (e *Error) Equal(e2 *Error) bool {
	return e.Code == e2.Code && e.Message == e2.Message
}

// IsError tests the concrete error is of the Error type.
func IsError(err error) bool {
	var er *Error
	return errors.As(err, &er)
}

// GetError returns a copy of the Error pointer.
func GetError(err error) *Error {
	var er *Error
	if !errors.As(err, &er) {
		return nil
	}
	return er
}
