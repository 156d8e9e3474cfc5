package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const ActionGenerateFullCollection = "generate_full_collection"

// Request is the envelope the generation backend receives for one session.
type Request struct {
	Action     string     `json:"action"`
	SessionID  string     `json:"session_id"`
	ImageData  string     `json:"image_data"`
	Parameters Parameters `json:"parameters"`
}

type Parameters struct {
	Category string `json:"category"`
	Gender   string `json:"gender"`
	Type     string `json:"type"`
	Style    string `json:"style"`
}

// Response carries the artifact references exactly as the backend reported them.
// step_1 is the final design, step_2 the tech flat, step_3 the try-on.
type Response struct {
	Step1    string          `json:"step_1"`
	Step2    string          `json:"step_2"`
	Step3    string          `json:"step_3"`
	SpecsLog json.RawMessage `json:"specs_log,omitempty"`
}

// Backend performs one synchronous generation call. A non-success answer from the
// backend is reported as *BackendError; anything else (transport, deadline,
// undecodable body) is returned as a plain error.
type Backend interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// ErrMalformedResponse marks a success answer that cannot be used: not JSON,
// null, or missing an artifact reference.
var ErrMalformedResponse = errors.New("malformed compute response")

func decodeResponse(raw []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	var out Response
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"step_1", out.Step1},
		{"step_2", out.Step2},
		{"step_3", out.Step3},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	if len(out.SpecsLog) > 0 && string(out.SpecsLog) == "null" {
		out.SpecsLog = nil
	}
	return &out, nil
}
