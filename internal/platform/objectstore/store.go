package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

// Store is the slice of blob storage the generation flow needs. Exists reports a
// missing object as (false, nil); any other failure is returned as an error.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, key string, r io.Reader) error
	PublicURL(key string) string
}

func NewStoreFromEnv(log *logger.Logger) (Store, error) {
	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewStoreWithConfig(log, cfg)
}

func NewStoreWithConfig(log *logger.Logger, cfg Config) (Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	switch cfg.Mode {
	case ModeS3:
		return newS3Store(log, cfg)
	case ModeGCS, ModeGCSEmulator:
		return newGCSStore(context.Background(), log, cfg)
	default:
		return nil, &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func normalizeKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
