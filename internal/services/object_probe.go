package services

import (
	"context"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"github.com/yungbote/fabsketch-backend/internal/platform/objectstore"
)

// ObjectProbe answers whether one session artifact is currently in storage.
// It never writes.
type ObjectProbe interface {
	Exists(ctx context.Context, sessionID string, role generation.Role) (bool, error)
}

type objectProbe struct {
	log     *logger.Logger
	store   objectstore.Store
	metrics *observability.Metrics
}

func NewObjectProbe(log *logger.Logger, store objectstore.Store, metrics *observability.Metrics) ObjectProbe {
	return &objectProbe{
		log:     log.With("service", "ObjectProbe"),
		store:   store,
		metrics: metrics,
	}
}

func (p *objectProbe) Exists(ctx context.Context, sessionID string, role generation.Role) (bool, error) {
	ok, err := p.store.Exists(ctx, generation.ArtifactKey(sessionID, role))
	switch {
	case err != nil:
		p.metrics.IncProbe(string(role), "error")
		return false, &StorageError{Op: "probe", Cause: err}
	case ok:
		p.metrics.IncProbe(string(role), "present")
	default:
		p.metrics.IncProbe(string(role), "absent")
	}
	return ok, nil
}
