package observability

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

// Metrics owns a private registry so tests can build as many as they like.
// Every method is safe on a nil receiver, which is what callers get when
// METRICS_ENABLED=false.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	invocations       *prometheus.CounterVec
	invocationLatency *prometheus.HistogramVec
	probes            *prometheus.CounterVec
	finalizations     *prometheus.CounterVec
	trackerErrors     *prometheus.CounterVec
	storageBootstrap  *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

func Enabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED"))) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		if log != nil {
			log.Info("metrics disabled")
		}
		return nil
	}
	return New()
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fs_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fs_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 180},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fs_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fs_generation_invocations_total",
			Help: "Compute backend invocations by backend and outcome.",
		}, []string{"backend", "outcome"}),
		invocationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fs_generation_invocation_duration_seconds",
			Help:    "Compute backend round trip in seconds.",
			Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120, 180, 240},
		}, []string{"backend", "outcome"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fs_artifact_probes_total",
			Help: "Artifact existence probes by role and result (present, absent, error).",
		}, []string{"role", "result"}),
		finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fs_design_finalizations_total",
			Help: "Design finalizations by outcome.",
		}, []string{"outcome"}),
		trackerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fs_session_tracker_errors_total",
			Help: "Session tracker failures by operation.",
		}, []string{"op"}),
		storageBootstrap: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fs_object_storage_bootstrap_total",
			Help: "Object storage provider bootstraps by mode and error code (none on success).",
		}, []string{"mode", "error_code"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fs_redis_up",
			Help: "1 when the last redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fs_redis_ping_seconds",
			Help: "Latency of the last successful redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.invocations,
		m.invocationLatency,
		m.probes,
		m.finalizations,
		m.trackerErrors,
		m.storageBootstrap,
		m.redisUp,
		m.redisPing,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveInvocation(backend, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(backend, outcome).Inc()
	m.invocationLatency.WithLabelValues(backend, outcome).Observe(dur.Seconds())
}

func (m *Metrics) IncProbe(role, result string) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(role, result).Inc()
}

func (m *Metrics) IncFinalization(outcome string) {
	if m == nil {
		return
	}
	m.finalizations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncTrackerError(op string) {
	if m == nil {
		return
	}
	m.trackerErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) IncStorageBootstrap(mode, errorCode string) {
	if m == nil {
		return
	}
	m.storageBootstrap.WithLabelValues(mode, errorCode).Inc()
}

// StartPostgresCollector exports database/sql pool stats for db.
func (m *Metrics) StartPostgresCollector(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, db.Dialector.Name())); err != nil && log != nil {
		log.Warn("metrics: register db stats collector failed", "error", err)
	}
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
