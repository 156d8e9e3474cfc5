package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/platform/compute"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func pngSketch(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []compute.Request
	resp  *compute.Response
	err   error
	// block makes Invoke wait for ctx cancellation.
	block bool
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Invoke(ctx context.Context, req compute.Request) (*compute.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]bool
	failing map[string]bool
	probed  []string
}

func newFakeStore(keys ...string) *fakeStore {
	s := &fakeStore{objects: map[string]bool{}, failing: map[string]bool{}}
	for _, k := range keys {
		s.objects[k] = true
	}
	return s
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probed = append(s.probed, key)
	if s.failing[key] {
		return false, errors.New("AccessDenied: credentials for bucket secret-bucket expired")
	}
	return s.objects[key], nil
}

func (s *fakeStore) Upload(_ context.Context, key string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = true
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://media.example.com/" + key
}

type fakeTracker struct {
	mu        sync.Mutex
	states    map[string][]generation.DispatchState
	recordErr error
	lookupErr error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{states: map[string][]generation.DispatchState{}}
}

func (f *fakeTracker) Record(_ context.Context, sessionID string, state generation.DispatchState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.states[sessionID] = append(f.states[sessionID], state)
	return nil
}

func (f *fakeTracker) Lookup(_ context.Context, sessionID string) (generation.DispatchState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return "", false, f.lookupErr
	}
	h := f.states[sessionID]
	if len(h) == 0 {
		return "", false, nil
	}
	return h[len(h)-1], true, nil
}
