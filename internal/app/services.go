package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"github.com/yungbote/fabsketch-backend/internal/services"
)

type Services struct {
	Tracker   services.SessionTracker
	Probe     services.ObjectProbe
	Invoker   services.GenerationInvoker
	Status    services.SessionStatusResolver
	Finalizer services.ResultFinalizer
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	var tracker services.SessionTracker
	if clients.Redis != nil {
		tracker = services.NewRedisSessionTracker(log, clients.Redis, cfg.Tracker.TTL)
	} else {
		log.Info("REDIS_ADDR unset; session tracker kept in process")
		tracker = services.NewMemorySessionTracker(cfg.Tracker.Size, cfg.Tracker.TTL)
	}

	probe := services.NewObjectProbe(log, clients.ObjectStore, metrics)
	invoker := services.NewGenerationInvoker(log, clients.Compute, tracker, metrics, services.GenerationInvokerConfig{
		Timeout:        cfg.Generation.Timeout,
		ValidateSketch: *cfg.Generation.ValidateSketch,
	})
	status := services.NewSessionStatusResolver(log, probe, tracker, metrics)
	finalizer := services.NewResultFinalizer(db, log, clients.ObjectStore, reposet.User, reposet.Design, metrics)

	return Services{
		Tracker:   tracker,
		Probe:     probe,
		Invoker:   invoker,
		Status:    status,
		Finalizer: finalizer,
	}
}
