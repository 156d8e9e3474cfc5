package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"github.com/yungbote/fabsketch-backend/internal/platform/objectstore"
)

type stubStore struct{}

func (stubStore) Exists(context.Context, string) (bool, error)    { return false, nil }
func (stubStore) Upload(context.Context, string, io.Reader) error { return nil }
func (stubStore) PublicURL(key string) string                     { return "https://cdn.example/" + key }

func stubObjectStore(t *testing.T, fn func(*logger.Logger, objectstore.Config) (objectstore.Store, error)) *objectstore.Config {
	t.Helper()
	orig := newObjectStoreWithConfig
	t.Cleanup(func() { newObjectStoreWithConfig = orig })

	var captured objectstore.Config
	newObjectStoreWithConfig = func(log *logger.Logger, cfg objectstore.Config) (objectstore.Store, error) {
		captured = cfg
		return fn(log, cfg)
	}
	return &captured
}

func clearStorageEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OBJECT_STORAGE_MODE", "OBJECT_STORAGE_BUCKET", "STORAGE_EMULATOR_HOST",
		"OBJECT_STORAGE_PUBLIC_BASE_URL", "OBJECT_STORAGE_CDN_DOMAIN",
	} {
		t.Setenv(k, "")
	}
}

func TestClassifyStorageProviderBootstrapErrorCodes(t *testing.T) {
	cases := []struct {
		src  objectstore.ConfigErrorCode
		want StorageProviderBootstrapErrorCode
	}{
		{objectstore.ConfigErrorInvalidMode, StorageProviderBootstrapErrorInvalidMode},
		{objectstore.ConfigErrorMissingEmulatorHost, StorageProviderBootstrapErrorMissingEmulatorHost},
		{objectstore.ConfigErrorInvalidEmulatorHost, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{objectstore.ConfigErrorMissingBucket, StorageProviderBootstrapErrorMissingBucket},
		{objectstore.ConfigErrorInvalidPublicURL, StorageProviderBootstrapErrorInvalidConfig},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(objectstore.Config{Mode: objectstore.ModeGCSEmulator}, &objectstore.ConfigError{Code: tc.src})
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.src, err)
		}
		if got.Code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.src, tc.want, got.Code)
		}
	}
}

func TestClassifyStorageProviderBootstrapErrorConnectFailed(t *testing.T) {
	err := classifyStorageProviderBootstrapError(objectstore.Config{Mode: objectstore.ModeGCS}, errors.New("dial tcp: refused"))
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, code)
	}
	if !errors.Is(err, err.(*StorageProviderBootstrapError).Cause) {
		t.Fatalf("expected cause to unwrap")
	}
}

func TestResolveObjectStoreInvalidMode(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("OBJECT_STORAGE_MODE", "ftp")
	t.Setenv("OBJECT_STORAGE_BUCKET", "designs")
	stubObjectStore(t, func(*logger.Logger, objectstore.Config) (objectstore.Store, error) {
		t.Fatalf("store must not be built for an invalid mode")
		return nil, nil
	})

	_, err := resolveObjectStore(logger.NewNop(), nil)
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q (err=%v)", StorageProviderBootstrapErrorInvalidMode, code, err)
	}
}

func TestResolveObjectStoreDefaultsToS3(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("OBJECT_STORAGE_BUCKET", "designs")
	captured := stubObjectStore(t, func(*logger.Logger, objectstore.Config) (objectstore.Store, error) {
		return stubStore{}, nil
	})

	store, err := resolveObjectStore(logger.NewNop(), nil)
	if err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if store == nil {
		t.Fatalf("expected store")
	}
	if captured.Mode != objectstore.ModeS3 {
		t.Fatalf("mode: want=%q got=%q", objectstore.ModeS3, captured.Mode)
	}
	if captured.Bucket != "designs" {
		t.Fatalf("bucket: want=%q got=%q", "designs", captured.Bucket)
	}
}

func TestResolveObjectStoreEmulatorFallback(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("OBJECT_STORAGE_BUCKET", "designs")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	captured := stubObjectStore(t, func(*logger.Logger, objectstore.Config) (objectstore.Store, error) {
		return stubStore{}, nil
	})

	if _, err := resolveObjectStore(logger.NewNop(), nil); err != nil {
		t.Fatalf("resolveObjectStore: %v", err)
	}
	if captured.Mode != objectstore.ModeGCSEmulator || !captured.CompatibilityFallback {
		t.Fatalf("expected compatibility fallback to gcs_emulator, got mode=%q fallback=%v", captured.Mode, captured.CompatibilityFallback)
	}
}

func TestResolveObjectStoreMissingEmulatorHost(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("OBJECT_STORAGE_MODE", "gcs_emulator")
	t.Setenv("OBJECT_STORAGE_BUCKET", "designs")

	_, err := resolveObjectStore(logger.NewNop(), nil)
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorMissingEmulatorHost, code)
	}
}

func TestResolveObjectStoreConnectFailed(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("OBJECT_STORAGE_MODE", "gcs")
	t.Setenv("OBJECT_STORAGE_BUCKET", "designs")
	stubObjectStore(t, func(*logger.Logger, objectstore.Config) (objectstore.Store, error) {
		return nil, errors.New("credentials not found")
	})

	_, err := resolveObjectStore(logger.NewNop(), nil)
	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
	}
	if got.Code != StorageProviderBootstrapErrorConnectFailed || got.Mode != "gcs" {
		t.Fatalf("unexpected error: %+v", got)
	}
}
