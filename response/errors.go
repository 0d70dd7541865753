package response

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed failure services return to the HTTP surface.
// Code is the wire error code, Status the HTTP status it maps to.
type Error struct {
	Code   ErrorCode
	Status int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
}

func NewValidation(msg string) *Error {
	return &Error{Code: InvalidRequest, Status: http.StatusBadRequest, Msg: msg}
}

func NewValidationf(format string, args ...any) *Error {
	return NewValidation(fmt.Sprintf(format, args...))
}

func NewUnauthorized(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Status: http.StatusUnauthorized, Msg: msg}
}

func NewForbidden(msg string) *Error {
	return &Error{Code: PermissionDenied, Status: http.StatusForbidden, Msg: msg}
}

// NewNotFound reports a missing (or soft-deleted) resource by kind,
// e.g. "project not found".
func NewNotFound(kind string) *Error {
	return &Error{Code: ResourceNotFound, Status: http.StatusNotFound, Msg: kind + " not found"}
}

func NewDuplicate(msg string) *Error {
	return &Error{Code: DuplicateResource, Status: http.StatusConflict, Msg: msg}
}

func NewBusiness(msg string) *Error {
	return &Error{Code: BusinessError, Status: http.StatusConflict, Msg: msg}
}

func NewInternal(err error) *Error {
	return &Error{Code: InternalError, Status: http.StatusInternalServerError, Msg: "internal error: " + err.Error()}
}

// From normalizes any error to a *Error; unknown errors become internal ones.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}
