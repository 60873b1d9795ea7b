package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status class alongside a machine-readable code.
// Domain services return these for outcomes the client must distinguish;
// handlers map everything else to a generic 500.
type Error struct {
	Status int
	Code   string
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func New(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Msg: msg}
}

func NotFound(code, msg string) *Error      { return New(http.StatusNotFound, code, msg) }
func Forbidden(code, msg string) *Error     { return New(http.StatusForbidden, code, msg) }
func BadRequest(code, msg string) *Error    { return New(http.StatusBadRequest, code, msg) }
func Conflict(code, msg string) *Error      { return New(http.StatusConflict, code, msg) }
func Unprocessable(code, msg string) *Error { return New(http.StatusUnprocessableEntity, code, msg) }

// StatusOf extracts the HTTP status from err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
