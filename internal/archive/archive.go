package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// ErrIncompleteConfig is returned when a bucket is set without the settings
// needed to reach it.
var ErrIncompleteConfig = errors.New("incomplete archive configuration")

// Archiver stores a copy of a converted file.
type Archiver interface {
	Archive(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Config holds the S3 settings. Endpoint is only needed for S3-compatible
// services such as MinIO; it switches the client to path-style addressing.
type Config struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Validate checks that an enabled configuration is usable.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}

	var missing []string
	if c.Region == "" {
		missing = append(missing, "ARCHIVE_S3_REGION")
	}
	if c.AccessKey == "" {
		missing = append(missing, "ARCHIVE_S3_ACCESS_KEY")
	}
	if c.SecretKey == "" {
		missing = append(missing, "ARCHIVE_S3_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not set", ErrIncompleteConfig, strings.Join(missing, ", "))
	}
	return nil
}

// uploadAPI is the part of manager.Uploader the archiver uses.
type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver uploads files to an S3 bucket.
type S3Archiver struct {
	uploader uploadAPI
	bucket   string
	prefix   string
}

// NewS3 builds an archiver from cfg using static credentials.
func NewS3(cfg Config) (*S3Archiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: ARCHIVE_S3_BUCKET not set", ErrIncompleteConfig)
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	client := s3.New(opts)
	return newS3Archiver(manager.NewUploader(client), cfg.Bucket, cfg.Prefix), nil
}

func newS3Archiver(uploader uploadAPI, bucket, prefix string) *S3Archiver {
	return &S3Archiver{
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// Bucket returns the target bucket name.
func (a *S3Archiver) Bucket() string {
	return a.bucket
}

// Archive uploads body under the configured prefix joined with key.
func (a *S3Archiver) Archive(ctx context.Context, key string, body io.Reader, contentType string) error {
	fullKey := a.objectKey(key)
	start := time.Now()

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	metrics.ArchiveUploadDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ArchiveUploadsTotal.WithLabelValues(metrics.StatusFailed).Inc()
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", fullKey, a.bucket, err)
	}

	metrics.ArchiveUploadsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	logging.Debug("Archived %s to bucket %s", fullKey, a.bucket)
	return nil
}

func (a *S3Archiver) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

// ObjectKey builds the key a converted file is archived under:
// YYYY/MM/DD/<request id>/<filename>.
func ObjectKey(t time.Time, requestID, filename string) string {
	return path.Join(t.UTC().Format("2006/01/02"), requestID, path.Base(filename))
}
