package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

// SessionStatusResolver derives a session's state from which generated
// artifacts are in storage. A session that never existed reads as pending.
type SessionStatusResolver interface {
	Status(ctx context.Context, sessionID string) generation.SessionStatus
}

type sessionStatusResolver struct {
	log     *logger.Logger
	probe   ObjectProbe
	tracker SessionTracker
	metrics *observability.Metrics
}

func NewSessionStatusResolver(log *logger.Logger, probe ObjectProbe, tracker SessionTracker, metrics *observability.Metrics) SessionStatusResolver {
	return &sessionStatusResolver{
		log:     log.With("service", "SessionStatusResolver"),
		probe:   probe,
		tracker: tracker,
		metrics: metrics,
	}
}

func (s *sessionStatusResolver) Status(ctx context.Context, sessionID string) generation.SessionStatus {
	sessionID = strings.TrimSpace(sessionID)
	out := generation.SessionStatus{
		SessionID:      sessionID,
		State:          generation.StatePending,
		CompletedFiles: []string{},
	}
	if sessionID == "" {
		return out
	}

	ctx, span := observability.StartSpan(ctx, "generation.status")
	defer span.End()

	roles := generation.GeneratedRoles()
	present := make([]bool, len(roles))

	// Probes are independent reads; a failed probe counts as absent.
	var g errgroup.Group
	for i, role := range roles {
		i, role := i, role
		g.Go(func() error {
			ok, err := s.probe.Exists(ctx, sessionID, role)
			if err != nil {
				s.log.Warn("Artifact probe failed; reporting absent",
					"session_id", sessionID,
					"role", role,
					"error", err,
				)
				return nil
			}
			present[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	for i, role := range roles {
		if present[i] {
			out.CompletedFiles = append(out.CompletedFiles, role.Filename())
		}
	}
	completed := len(out.CompletedFiles)
	out.State = generation.StateFor(completed)
	out.Progress = float64(completed) / float64(len(roles))
	out.Dispatch = s.lookupDispatch(ctx, sessionID)

	span.SetAttributes(
		attribute.String("generation.state", string(out.State)),
		attribute.Int("generation.completed", completed),
	)
	return out
}

func (s *sessionStatusResolver) lookupDispatch(ctx context.Context, sessionID string) generation.DispatchState {
	if s.tracker == nil {
		return ""
	}
	tctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	state, ok, err := s.tracker.Lookup(tctx, sessionID)
	if err != nil {
		s.metrics.IncTrackerError("lookup")
		s.log.Warn("Session tracker lookup failed", "session_id", sessionID, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return state
}
