package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type HTTPOptions struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

type httpBackend struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPBackend(opts HTTPOptions) (Backend, error) {
	u := strings.TrimSpace(opts.URL)
	if u == "" {
		return nil, errors.New("compute backend url required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &httpBackend{
		url:        u,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: hc,
	}, nil
}

func (b *httpBackend) Name() string { return string(ModeHTTP) }

func (b *httpBackend) Invoke(ctx context.Context, in Request) (*Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return nil, fmt.Errorf("encode compute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("build compute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compute request: %w", err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read compute response: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newBackendError(resp.StatusCode, "", raw)
	}

	out, err := decodeResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode compute response: %w", err)
	}
	return out, nil
}
