package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (m *mockUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	m.input = input
	if input.Body != nil {
		data, _ := io.ReadAll(input.Body)
		m.body = string(data)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Disabled", Config{}, false},
		{"Complete", Config{Bucket: "b", Region: "us-east-1", AccessKey: "k", SecretKey: "s"}, false},
		{"Missing region", Config{Bucket: "b", AccessKey: "k", SecretKey: "s"}, true},
		{"Missing keys", Config{Bucket: "b", Region: "eu-west-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrIncompleteConfig) {
				t.Errorf("expected ErrIncompleteConfig, got %v", err)
			}
		})
	}
}

func TestConfigValidateNamesMissingVariables(t *testing.T) {
	err := Config{Bucket: "b", Region: "r"}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"ARCHIVE_S3_ACCESS_KEY", "ARCHIVE_S3_SECRET_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should mention %s", err, name)
		}
	}
}

func TestNewS3(t *testing.T) {
	a, err := NewS3(Config{
		Bucket:    "converted",
		Region:    "us-east-1",
		Prefix:    "/media/",
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if a.Bucket() != "converted" {
		t.Errorf("Bucket() = %s", a.Bucket())
	}
	if a.prefix != "media" {
		t.Errorf("prefix = %q, want media", a.prefix)
	}
}

func TestNewS3Disabled(t *testing.T) {
	if _, err := NewS3(Config{}); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("expected ErrIncompleteConfig, got %v", err)
	}
}

func TestArchive(t *testing.T) {
	up := &mockUploader{}
	a := newS3Archiver(up, "converted", "media")

	err := a.Archive(context.Background(), "2026/01/02/req/clip.mp4", strings.NewReader("video bytes"), "video/mp4")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if aws.ToString(up.input.Bucket) != "converted" {
		t.Errorf("Bucket = %s", aws.ToString(up.input.Bucket))
	}
	if aws.ToString(up.input.Key) != "media/2026/01/02/req/clip.mp4" {
		t.Errorf("Key = %s", aws.ToString(up.input.Key))
	}
	if aws.ToString(up.input.ContentType) != "video/mp4" {
		t.Errorf("ContentType = %s", aws.ToString(up.input.ContentType))
	}
	if up.body != "video bytes" {
		t.Errorf("body = %q", up.body)
	}
}

func TestArchiveError(t *testing.T) {
	up := &mockUploader{err: errors.New("access denied")}
	a := newS3Archiver(up, "converted", "")

	err := a.Archive(context.Background(), "k", strings.NewReader("x"), "application/octet-stream")
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	ts := time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"Plain", "clip.mp4", "2026/03/04/req-1/clip.mp4"},
		{"Strips directories", "../../etc/clip.mp4", "2026/03/04/req-1/clip.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectKey(ts, "req-1", tt.filename); got != tt.want {
				t.Errorf("ObjectKey = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestObjectKeyWithoutPrefix(t *testing.T) {
	a := newS3Archiver(&mockUploader{}, "b", "")
	if got := a.objectKey("/a/b.mp3"); got != "a/b.mp3" {
		t.Errorf("objectKey = %s, want a/b.mp3", got)
	}
}
