package compute

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// BackendError is a completed call whose answer was a failure. Details holds the
// backend's diagnostic payload as JSON.
type BackendError struct {
	StatusCode    int
	FunctionError string
	Details       json.RawMessage
}

func (e *BackendError) Error() string {
	if e == nil {
		return "compute backend error"
	}
	if fe := strings.TrimSpace(e.FunctionError); fe != "" {
		return fmt.Sprintf("compute backend error: status=%d function_error=%s", e.StatusCode, fe)
	}
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "failure"
	}
	return fmt.Sprintf("compute backend error: status=%d message=%s", e.StatusCode, text)
}

func newBackendError(status int, functionError string, raw []byte) *BackendError {
	return &BackendError{
		StatusCode:    status,
		FunctionError: strings.TrimSpace(functionError),
		Details:       detailsFromBody(raw),
	}
}

// Non-JSON bodies are kept as a JSON string so callers can always embed Details.
func detailsFromBody(raw []byte) json.RawMessage {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	return json.RawMessage(quoted)
}
