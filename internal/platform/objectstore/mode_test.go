package objectstore

import (
	"errors"
	"testing"
)

func setStorageEnv(t *testing.T, mode, emulatorHost, bucket string) {
	t.Helper()
	t.Setenv("OBJECT_STORAGE_MODE", mode)
	t.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)
	t.Setenv("OBJECT_STORAGE_BUCKET", bucket)
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")
}

func TestResolveConfigFromEnvDefaultS3(t *testing.T) {
	setStorageEnv(t, "", "", "fab-sketch-media")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeS3 {
		t.Fatalf("mode: want=%q got=%q", ModeS3, cfg.Mode)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestResolveConfigFromEnvExplicitGCS(t *testing.T) {
	setStorageEnv(t, "gcs", "http://fake-gcs:4443", "fab-sketch-media")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeGCS {
		t.Fatalf("mode: want=%q got=%q", ModeGCS, cfg.Mode)
	}
}

func TestResolveConfigFromEnvCompatibilityFallback(t *testing.T) {
	setStorageEnv(t, "", "http://fake-gcs:4443", "fab-sketch-media")

	cfg, err := ResolveConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveConfigFromEnv: %v", err)
	}
	if cfg.Mode != ModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=true got=false")
	}
	if got := cfg.ModeSource(); got != "compatibility_fallback" {
		t.Fatalf("ModeSource: want=%q got=%q", "compatibility_fallback", got)
	}
}

func TestResolveConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		emulator string
		bucket   string
		code     ConfigErrorCode
	}{
		{"invalid mode", "local", "", "b", ConfigErrorInvalidMode},
		{"missing bucket", "s3", "", "", ConfigErrorMissingBucket},
		{"missing emulator host", "gcs_emulator", "", "b", ConfigErrorMissingEmulatorHost},
		{"invalid emulator host", "gcs_emulator", "fake-gcs:4443", "b", ConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setStorageEnv(t, tc.mode, tc.emulator, tc.bucket)

			_, err := ResolveConfigFromEnv()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got=%T (%v)", err, err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
		})
	}
}

func TestValidateConfigRejectsRelativePublicURL(t *testing.T) {
	err := ValidateConfig(Config{Mode: ModeS3, Bucket: "b", PublicBaseURL: "cdn.example.com"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Code != ConfigErrorInvalidPublicURL {
		t.Fatalf("expected invalid public url error, got=%v", err)
	}
}

func TestModeHelpers(t *testing.T) {
	for _, m := range []Mode{ModeS3, ModeGCS, ModeGCSEmulator} {
		if !IsSupportedMode(m) {
			t.Fatalf("%q should be supported", m)
		}
	}
	if IsSupportedMode(Mode("invalid")) {
		t.Fatalf("invalid mode should not be supported")
	}
	if IsEmulatorMode(ModeS3) || IsEmulatorMode(ModeGCS) {
		t.Fatalf("only gcs_emulator is an emulator mode")
	}
}
