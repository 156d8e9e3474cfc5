package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/yungbote/fabsketch-backend/internal/pkg/errors"
	"github.com/yungbote/fabsketch-backend/internal/platform/compute"
)

// ValidationError rejects a request before any session id is minted or any
// external call is made.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	if len(e.Fields) > 0 && e.Reason == "" {
		return "Missing required fields: " + strings.Join(e.Fields, ", ")
	}
	if e.Reason != "" {
		return e.Reason
	}
	return "validation failed"
}

func (e *ValidationError) Is(target error) bool { return target == pkgerrors.ErrInvalidArgument }

// BackendError is a compute call that completed with a non-success answer.
type BackendError struct {
	SessionID  string
	StatusCode int
	Details    json.RawMessage
	Cause      error
}

func (e *BackendError) Error() string {
	if e == nil {
		return "compute backend failed"
	}
	return fmt.Sprintf("compute backend failed (session %s): %v", e.SessionID, e.Cause)
}

func (e *BackendError) Unwrap() error               { return e.Cause }
func (e *BackendError) Is(target error) bool        { return target == pkgerrors.ErrUnavailable }
func (e *BackendError) GenerationSessionID() string { return e.SessionID }

// InvocationError covers transport failures, deadlines and undecodable answers.
type InvocationError struct {
	SessionID string
	Cause     error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return "compute invocation failed"
	}
	return fmt.Sprintf("compute invocation failed (session %s): %v", e.SessionID, e.Cause)
}

func (e *InvocationError) Unwrap() error               { return e.Cause }
func (e *InvocationError) Is(target error) bool        { return target == pkgerrors.ErrUnavailable }
func (e *InvocationError) GenerationSessionID() string { return e.SessionID }

func (e *InvocationError) Timeout() bool {
	return e != nil && errors.Is(e.Cause, context.DeadlineExceeded)
}

// Kind names the failure class without any of the cause's text: "timeout",
// "decode" or "transport".
func (e *InvocationError) Kind() string {
	switch {
	case e.Timeout():
		return "timeout"
	case e != nil && errors.Is(e.Cause, compute.ErrMalformedResponse):
		return "decode"
	default:
		return "transport"
	}
}

// StorageError wraps persistence and object storage failures. Its message is
// safe to show callers; the cause is for logs only.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "storage failure"
	}
	return fmt.Sprintf("storage failure during %s", e.Op)
}

func (e *StorageError) Unwrap() error        { return e.Cause }
func (e *StorageError) Is(target error) bool { return target == pkgerrors.ErrUnavailable }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool { return target == pkgerrors.ErrNotFound }
