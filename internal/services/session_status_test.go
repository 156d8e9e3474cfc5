package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/observability"
)

func newTestResolver(t *testing.T, store *fakeStore, tracker SessionTracker) SessionStatusResolver {
	t.Helper()
	log := testLogger(t)
	m := observability.New()
	return NewSessionStatusResolver(log, NewObjectProbe(log, store, m), tracker, m)
}

func TestStatusPendingForUnknownSession(t *testing.T) {
	r := newTestResolver(t, newFakeStore(), nil)

	st := r.Status(context.Background(), "unknown-session")
	assert.Equal(t, "unknown-session", st.SessionID)
	assert.Equal(t, generation.StatePending, st.State)
	assert.Equal(t, []string{}, st.CompletedFiles)
	assert.Equal(t, 0.0, st.Progress)
	assert.Empty(t, st.Dispatch)
}

func TestStatusInProgressWithTwoOfThree(t *testing.T) {
	store := newFakeStore("s1/step_1.jpg", "s1/step_3.jpg", "s1/sketch.jpg")
	r := newTestResolver(t, store, nil)

	st := r.Status(context.Background(), "s1")
	assert.Equal(t, generation.StateInProgress, st.State)
	assert.Equal(t, []string{"step_1.jpg", "step_3.jpg"}, st.CompletedFiles)
	assert.InDelta(t, 2.0/3.0, st.Progress, 1e-9)
}

func TestStatusCompletedWithAllThree(t *testing.T) {
	store := newFakeStore("s2/step_1.jpg", "s2/step_2.jpg", "s2/step_3.jpg")
	r := newTestResolver(t, store, nil)

	st := r.Status(context.Background(), "s2")
	assert.Equal(t, generation.StateCompleted, st.State)
	assert.Equal(t, []string{"step_1.jpg", "step_2.jpg", "step_3.jpg"}, st.CompletedFiles)
	assert.Equal(t, 1.0, st.Progress)
}

func TestStatusProbeErrorCountsAsAbsent(t *testing.T) {
	store := newFakeStore("s3/step_1.jpg", "s3/step_2.jpg", "s3/step_3.jpg")
	store.failing["s3/step_2.jpg"] = true
	r := newTestResolver(t, store, nil)

	st := r.Status(context.Background(), "s3")
	assert.Equal(t, generation.StateInProgress, st.State)
	assert.Equal(t, []string{"step_1.jpg", "step_3.jpg"}, st.CompletedFiles)
}

func TestStatusProbesOnlyGeneratedRoles(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(t, store, nil)
	r.Status(context.Background(), "s4")

	assert.ElementsMatch(t, []string{"s4/step_1.jpg", "s4/step_2.jpg", "s4/step_3.jpg"}, store.probed)
}

func TestStatusDispatchAnnotatesWithoutChangingState(t *testing.T) {
	tracker := newFakeTracker()
	_ = tracker.Record(context.Background(), "s5", generation.DispatchFailed)
	r := newTestResolver(t, newFakeStore("s5/step_1.jpg"), tracker)

	st := r.Status(context.Background(), "s5")
	assert.Equal(t, generation.DispatchFailed, st.Dispatch)
	assert.Equal(t, generation.StateInProgress, st.State)
}

func TestStatusTrackerErrorIsIgnored(t *testing.T) {
	tracker := newFakeTracker()
	tracker.lookupErr = errors.New("redis down")
	r := newTestResolver(t, newFakeStore(), tracker)

	st := r.Status(context.Background(), "s6")
	assert.Equal(t, generation.StatePending, st.State)
	assert.Empty(t, st.Dispatch)
}
