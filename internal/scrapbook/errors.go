package scrapbook

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
)

// ValidationError names the offending field of a rejected payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// prefixed re-roots a nested validation error under parent, e.g. "properties.src".
func prefixed(parent string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		field := parent
		if ve.Field != "" {
			field = parent + "." + ve.Field
		}
		return &ValidationError{Field: field, Message: ve.Message}
	}
	return err
}

// UpstreamError is a non-success answer from a proxied third-party API.
// Status carries the upstream HTTP status when one was received.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s upstream error", e.Service)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status a handler should answer with. Client errors and
// service-unavailable answers from the upstream are passed through so callers
// can react to them (402 from a paid API stays 402). Credential failures are
// ours, not the caller's, and become 502.
func (e *UpstreamError) HTTPStatus() int {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return http.StatusBadGateway
	case e.Status == http.StatusServiceUnavailable:
		return e.Status
	case e.Status >= 400 && e.Status < 500:
		return e.Status
	default:
		return http.StatusBadGateway
	}
}
