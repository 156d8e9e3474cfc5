package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/fabsketch-backend/internal/platform/envutil"
)

const (
	defaultPort              = "8080"
	defaultShutdownTimeout   = 15 * time.Second
	defaultGenerationTimeout = 180 * time.Second
	defaultTrackerTTL        = 24 * time.Hour
	defaultTrackerSize       = 10000
	defaultMaxBodyBytes      = 20 << 20
)

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GenerationConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	ValidateSketch *bool         `yaml:"validate_sketch"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type TrackerConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
	Size          int           `yaml:"size"`
}

type AuthConfig struct {
	JWTSecretKey string `yaml:"jwt_secret_key"`
	JWTIssuer    string `yaml:"jwt_issuer"`
}

type Config struct {
	LogMode    string           `yaml:"log_mode"`
	Version    string           `yaml:"version"`
	Server     ServerConfig     `yaml:"server"`
	Generation GenerationConfig `yaml:"generation"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Auth       AuthConfig       `yaml:"auth"`

	// Env seeds adapter settings (POSTGRES_*, OBJECT_STORAGE_*, COMPUTE_*, OTEL_*)
	// that are still unset in the process environment.
	Env map[string]string `yaml:"env"`
}

// LoadConfig reads an optional .env, then the YAML file at CONFIG_PATH, then
// applies environment overrides. Later sources win.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.seedEnv()
	cfg.SetDefaults()
	cfg.applyEnvOverrides()
	// Overrides may zero a value; non-positive durations and sizes fall back again.
	cfg.SetDefaults()

	if strings.TrimSpace(cfg.Auth.JWTSecretKey) == "" {
		return cfg, errors.New("JWT_SECRET_KEY is required")
	}
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.LogMode == "" {
		c.LogMode = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = defaultGenerationTimeout
	}
	if c.Generation.ValidateSketch == nil {
		v := true
		c.Generation.ValidateSketch = &v
	}
	if c.Generation.MaxBodyBytes <= 0 {
		c.Generation.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.Tracker.TTL <= 0 {
		c.Tracker.TTL = defaultTrackerTTL
	}
	if c.Tracker.Size <= 0 {
		c.Tracker.Size = defaultTrackerSize
	}
}

func (c *Config) applyEnvOverrides() {
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.Version = envutil.String("APP_VERSION", c.Version)
	c.Server.Port = strings.TrimPrefix(envutil.String("PORT", c.Server.Port), ":")
	c.Server.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Generation.Timeout = envutil.Duration("GENERATION_TIMEOUT_SECONDS", c.Generation.Timeout)
	validate := envutil.Bool("GENERATION_VALIDATE_SKETCH", *c.Generation.ValidateSketch)
	c.Generation.ValidateSketch = &validate
	c.Generation.MaxBodyBytes = int64(envutil.Int("GENERATION_MAX_BODY_BYTES", int(c.Generation.MaxBodyBytes)))

	c.Tracker.RedisAddr = envutil.String("REDIS_ADDR", c.Tracker.RedisAddr)
	c.Tracker.RedisPassword = envutil.String("REDIS_PASSWORD", c.Tracker.RedisPassword)
	c.Tracker.RedisDB = envutil.Int("REDIS_DB", c.Tracker.RedisDB)
	c.Tracker.TTL = envutil.Duration("SESSION_TRACKER_TTL", c.Tracker.TTL)

	c.Auth.JWTSecretKey = envutil.String("JWT_SECRET_KEY", c.Auth.JWTSecretKey)
	c.Auth.JWTIssuer = envutil.String("JWT_ISSUER", c.Auth.JWTIssuer)
}

func (c *Config) seedEnv() {
	for k, v := range c.Env {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		_ = os.Setenv(k, v)
	}
}

func (c Config) Addr() string { return ":" + c.Server.Port }
