package app

import (
	"fmt"
	"time"

	httpserver "github.com/yungbote/fabsketch-backend/internal/http"
	httpH "github.com/yungbote/fabsketch-backend/internal/http/handlers"
	httpMW "github.com/yungbote/fabsketch-backend/internal/http/middleware"
	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Generation *httpH.GenerationHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Generation: httpH.NewGenerationHandler(log, services.Invoker, services.Status, services.Finalizer, cfg.Generation.MaxBodyBytes),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) (Middleware, error) {
	log.Info("Wiring middleware...")
	auth, err := httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecretKey, cfg.Auth.JWTIssuer)
	if err != nil {
		return Middleware{}, fmt.Errorf("init auth middleware: %w", err)
	}
	return Middleware{Auth: auth}, nil
}

// The write timeout outlasts the generation deadline so a slow backend is
// reported as a 504 instead of a dropped connection.
func wireServer(log *logger.Logger, cfg Config, serviceName string, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *httpserver.Server {
	return httpserver.NewServer(cfg.Addr(), cfg.Generation.Timeout+30*time.Second, httpserver.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		GenerationHandler: handlers.Generation,
	})
}
