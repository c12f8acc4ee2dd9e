package archive

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3-compatible storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to archive.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// S3Archive uploads a copy of every synthesized artifact.
type S3Archive struct {
	client *minio.Client
	bucket string
	host   string
	now    func() time.Time
}

// NewS3Archive connects to the bucket and checks that it exists.
func NewS3Archive(ctx context.Context, cfg Config) (*S3Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		host:   fmt.Sprintf("%s://%s", scheme, cfg.Endpoint),
		now:    time.Now,
	}, nil
}

// Archive stores data under a fresh key and returns its URL.
func (a *S3Archive) Archive(ctx context.Context, data []byte) (string, error) {
	key := ObjectKey(a.now(), uuid.NewString())

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "audio/mpeg",
		UserMetadata: map[string]string{"uploaded-at": a.now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return a.publicURL(key), nil
}

// ObjectKey lays archived files out by day: audio/2006-01-02/<id>.mp3.
func ObjectKey(at time.Time, id string) string {
	return path.Join("audio", at.UTC().Format("2006-01-02"), id+".mp3")
}

func (a *S3Archive) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", a.host, a.bucket, (&url.URL{Path: key}).EscapedPath())
}
