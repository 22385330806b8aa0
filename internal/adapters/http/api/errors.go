package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrTooLarge      = errors.New("request body too large")
	ErrUnprocessable = errors.New("chart unavailable")
	ErrInternal      = errors.New("internal error")
	ErrBusy          = errors.New("service busy")
)

// OpError ties an error kind to the operation that produced it.
type OpError struct {
	Op    string
	Kind  error
	Cause error
}

func (e *OpError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// WrapKind annotates cause with op and kind.
func WrapKind(op string, kind, cause error) error {
	return &OpError{Op: op, Kind: kind, Cause: cause}
}
