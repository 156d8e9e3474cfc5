package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

const defaultS3Region = "ap-northeast-2"

type s3Store struct {
	log           *logger.Logger
	client        *minio.Client
	bucket        string
	region        string
	cdnDomain     string
	publicBaseURL string
}

func newS3Store(log *logger.Logger, cfg Config) (*s3Store, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultS3Region
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = fmt.Sprintf("s3.%s.amazonaws.com", region)
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  s3Credentials(cfg),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	s := &s3Store{
		log:           log.With("service", "S3ObjectStore"),
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		region:        region,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
	s.log.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"endpoint", endpoint,
		"region", region,
		"bucket", s.bucket,
		"static_credentials", cfg.AccessKey != "",
	)
	return s, nil
}

// Static keys win; otherwise fall back to the AWS env vars and then the instance role.
func s3Credentials(cfg Config) *credentials.Credentials {
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access != "" && secret != "" {
		return credentials.NewStaticV4(access, secret, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

func (s *s3Store) Exists(ctx context.Context, key string) (bool, error) {
	key = normalizeKey(key)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return false, nil
	}
	return false, fmt.Errorf("stat s3 object: %w", err)
}

func (s *s3Store) Upload(ctx context.Context, key string, r io.Reader) error {
	key = normalizeKey(key)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeForKey(key),
	})
	if err != nil {
		return fmt.Errorf("put s3 object: %w", err)
	}
	return nil
}

func (s *s3Store) PublicURL(key string) string {
	key = normalizeKey(key)
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	case s.publicBaseURL != "":
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
}
