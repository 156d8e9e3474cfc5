package compute

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type Mode string

const (
	ModeHTTP   Mode = "http"
	ModeLambda Mode = "lambda"

	DefaultLambdaFunction = "fabsketch-gen"
	DefaultLambdaRegion   = "ap-northeast-2"
)

type Config struct {
	Mode           Mode
	URL            string
	APIKey         string
	LambdaFunction string
	LambdaRegion   string
}

// ConfigFromEnv reads COMPUTE_BACKEND_MODE and the transport-specific COMPUTE_* keys.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Mode:           Mode(strings.ToLower(strings.TrimSpace(os.Getenv("COMPUTE_BACKEND_MODE")))),
		URL:            strings.TrimSpace(os.Getenv("COMPUTE_BACKEND_URL")),
		APIKey:         strings.TrimSpace(os.Getenv("COMPUTE_BACKEND_API_KEY")),
		LambdaFunction: strings.TrimSpace(os.Getenv("COMPUTE_LAMBDA_FUNCTION")),
		LambdaRegion:   strings.TrimSpace(os.Getenv("COMPUTE_LAMBDA_REGION")),
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeHTTP
	}
	if cfg.LambdaFunction == "" {
		cfg.LambdaFunction = DefaultLambdaFunction
	}
	if cfg.LambdaRegion == "" {
		cfg.LambdaRegion = DefaultLambdaRegion
	}
	switch cfg.Mode {
	case ModeHTTP:
		if cfg.URL == "" {
			return cfg, fmt.Errorf("COMPUTE_BACKEND_MODE=%q requires COMPUTE_BACKEND_URL", cfg.Mode)
		}
	case ModeLambda:
	default:
		return cfg, fmt.Errorf("invalid COMPUTE_BACKEND_MODE=%q (allowed: %q, %q)", cfg.Mode, ModeHTTP, ModeLambda)
	}
	return cfg, nil
}

func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Mode {
	case ModeHTTP, "":
		return NewHTTPBackend(HTTPOptions{URL: cfg.URL, APIKey: cfg.APIKey})
	case ModeLambda:
		return NewLambdaBackend(ctx, LambdaOptions{FunctionName: cfg.LambdaFunction, Region: cfg.LambdaRegion})
	default:
		return nil, fmt.Errorf("unsupported compute backend mode %q", cfg.Mode)
	}
}
