package apierr

import "fmt"

// Error is what handlers hand to the response layer: an HTTP status, a stable
// machine-readable code, the underlying cause and optional client-safe details.
type Error struct {
	Status    int
	Code      string
	Err       error
	Details   any
	SessionID string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) WithSession(sessionID string) *Error {
	e.SessionID = sessionID
	return e
}
