package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind categorizes task failures.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindTransport  ErrorKind = "transport"
)

// Messages shared by every TaskService implementation.
const (
	MsgTitleRequired        = "Title is mandatory and cannot be empty"
	MsgUpdateCancelled      = "Cannot update a cancelled task"
	MsgCompleteCancelled    = "Cannot complete a cancelled task"
	MsgStatusCancelled      = "Cannot change status of a cancelled task"
	MsgDeleteCompleted      = "Cannot delete a completed task"
	MsgDeleteCancelled      = "Cannot delete a cancelled task"
	MsgUnexpectedError      = "An unexpected error occurred"
	msgTaskNotFoundTemplate = "Task with id %d not found"
)

// TaskError is the single error shape surfaced by task services.
// Code is an HTTP-style status; zero means none was available.
type TaskError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Code    int       `json:"status,omitempty"`
	Err     error     `json:"-"`
}

func (e *TaskError) Error() string {
	return e.Message
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *TaskError {
	return &TaskError{Kind: KindValidation, Message: message, Code: http.StatusBadRequest}
}

func NewNotFoundError(id int64) *TaskError {
	return &TaskError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf(msgTaskNotFoundTemplate, id),
		Code:    http.StatusNotFound,
	}
}

func NewConflictError(message string) *TaskError {
	return &TaskError{Kind: KindConflict, Message: message, Code: http.StatusUnprocessableEntity}
}

// NewTransportError wraps a network or storage failure.
func NewTransportError(message string, code int, err error) *TaskError {
	return &TaskError{Kind: KindTransport, Message: message, Code: code, Err: err}
}

// AsTaskError extracts a TaskError from an error chain.
func AsTaskError(err error) (*TaskError, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// KindOf returns the kind of err. Errors that are not TaskErrors are
// treated as transport failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if te, ok := AsTaskError(err); ok {
		return te.Kind
	}
	return KindTransport
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }

// KindForStatus maps an HTTP status code onto the error taxonomy.
func KindForStatus(code int) ErrorKind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return KindConflict
	default:
		return KindTransport
	}
}
