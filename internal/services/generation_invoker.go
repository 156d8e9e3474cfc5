package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/compute"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

const DefaultGenerationTimeout = 180 * time.Second

type GenerationInvoker interface {
	Invoke(ctx context.Context, params generation.Parameters) (*generation.Result, error)
}

type GenerationInvokerConfig struct {
	Timeout        time.Duration
	ValidateSketch bool
}

type generationInvoker struct {
	log     *logger.Logger
	backend compute.Backend
	tracker SessionTracker
	metrics *observability.Metrics
	cfg     GenerationInvokerConfig

	newSessionID func() string
}

func NewGenerationInvoker(
	log *logger.Logger,
	backend compute.Backend,
	tracker SessionTracker,
	metrics *observability.Metrics,
	cfg GenerationInvokerConfig,
) GenerationInvoker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGenerationTimeout
	}
	return &generationInvoker{
		log:          log.With("service", "GenerationInvoker"),
		backend:      backend,
		tracker:      tracker,
		metrics:      metrics,
		cfg:          cfg,
		newSessionID: uuid.NewString,
	}
}

func (s *generationInvoker) Invoke(ctx context.Context, params generation.Parameters) (*generation.Result, error) {
	params, err := s.normalize(params)
	if err != nil {
		return nil, err
	}

	sessionID := s.newSessionID()
	ctx, span := observability.StartSpan(ctx, "generation.invoke",
		attribute.String("generation.backend", s.backend.Name()),
		attribute.String("generation.category", params.Category),
		attribute.String("generation.type", params.Type),
	)
	var invokeErr error
	defer func() { observability.EndSpan(span, invokeErr) }()

	s.track(ctx, sessionID, generation.DispatchDispatched)
	s.log.Info("Dispatching generation",
		"session_id", sessionID,
		"backend", s.backend.Name(),
		"category", params.Category,
		"gender", params.Gender,
		"type", params.Type,
		"style", params.Style,
	)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.backend.Invoke(callCtx, compute.Request{
		Action:    compute.ActionGenerateFullCollection,
		SessionID: sessionID,
		ImageData: params.ImageData,
		Parameters: compute.Parameters{
			Category: params.Category,
			Gender:   params.Gender,
			Type:     params.Type,
			Style:    params.Style,
		},
	})
	elapsed := time.Since(start)

	if err != nil {
		invokeErr = s.classify(sessionID, err)
		s.metrics.ObserveInvocation(s.backend.Name(), invocationOutcome(invokeErr), elapsed)
		s.track(ctx, sessionID, generation.DispatchFailed)
		s.log.Warn("Generation failed",
			"session_id", sessionID,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, invokeErr
	}

	s.metrics.ObserveInvocation(s.backend.Name(), "success", elapsed)
	s.track(ctx, sessionID, generation.DispatchSucceeded)
	s.log.Info("Generation completed", "session_id", sessionID, "elapsed_ms", elapsed.Milliseconds())

	return &generation.Result{
		SessionID: sessionID,
		Step1:     resp.Step1,
		Step2:     resp.Step2,
		Step3:     resp.Step3,
		SpecsLog:  resp.SpecsLog,
	}, nil
}

func (s *generationInvoker) normalize(p generation.Parameters) (generation.Parameters, error) {
	p.ImageData = strings.TrimSpace(p.ImageData)
	p.Category = strings.TrimSpace(p.Category)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Type = strings.TrimSpace(p.Type)
	p.Style = strings.TrimSpace(p.Style)
	if p.Style == "" {
		p.Style = generation.DefaultStyle
	}

	var missing []string
	if p.ImageData == "" {
		missing = append(missing, "image")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	if p.Gender == "" {
		missing = append(missing, "gender")
	}
	if p.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return p, &ValidationError{Fields: missing}
	}

	if s.cfg.ValidateSketch {
		if _, err := SketchFormat(p.ImageData); err != nil {
			return p, &ValidationError{
				Fields: []string{"image"},
				Reason: "image must be a base64 encoded PNG, JPEG, GIF or WebP bitmap",
			}
		}
	}
	return p, nil
}

func (s *generationInvoker) classify(sessionID string, err error) error {
	var be *compute.BackendError
	if errors.As(err, &be) {
		return &BackendError{
			SessionID:  sessionID,
			StatusCode: be.StatusCode,
			Details:    be.Details,
			Cause:      err,
		}
	}
	return &InvocationError{SessionID: sessionID, Cause: err}
}

func (s *generationInvoker) track(ctx context.Context, sessionID string, state generation.DispatchState) {
	if s.tracker == nil {
		return
	}
	// The tracker must not hold up or fail the generation path.
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.tracker.Record(tctx, sessionID, state); err != nil {
		s.metrics.IncTrackerError("record")
		s.log.Warn("Session tracker record failed", "session_id", sessionID, "state", state, "error", err)
	}
}

func invocationOutcome(err error) string {
	var be *BackendError
	var ie *InvocationError
	switch {
	case errors.As(err, &be):
		return "backend_error"
	case errors.As(err, &ie) && ie.Timeout():
		return "timeout"
	default:
		return "transport_error"
	}
}

// SketchFormat checks that data is a base64 bitmap, optionally wrapped in a
// data: URL, and returns the decoded image format.
func SketchFormat(data string) (string, error) {
	payload := strings.TrimSpace(data)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return "", errors.New("unsupported data url")
		}
		payload = payload[comma+1:]
	}
	_, format, err := image.DecodeConfig(base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload)))
	if err != nil {
		return "", fmt.Errorf("decode sketch: %w", err)
	}
	return format, nil
}
