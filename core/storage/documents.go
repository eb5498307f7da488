package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"catalog-bootstrapper/core/spec"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrDocumentNotFound is returned when a document key does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoBucket is returned when the storage config names no bucket.
	ErrNoBucket = errors.New("storage bucket is not configured")
)

// Documents stores spec documents and run reports in one bucket.
type Documents struct {
	client Client
	bucket string
}

// NewDocuments creates a document store on bucket.
func NewDocuments(client Client, bucket string) *Documents {
	return &Documents{client: client, bucket: bucket}
}

// Open connects to the configured storage and returns its document store.
func Open(cfg Config) (*Documents, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrNoBucket
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewDocuments(client, cfg.Bucket), nil
}

// Bucket returns the bucket name.
func (d *Documents) Bucket() string {
	return d.bucket
}

// EnsureBucket creates the bucket when it does not exist.
func (d *Documents) EnsureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", d.bucket, err)
	}
	if exists {
		return nil
	}
	if err := d.client.MakeBucket(ctx, d.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", d.bucket, err)
	}
	return nil
}

// ReadSpec loads a spec document. The format follows the key extension.
func (d *Documents) ReadSpec(ctx context.Context, key string) (*spec.Spec, error) {
	data, err := d.read(ctx, key)
	if err != nil {
		return nil, err
	}
	s, err := spec.Parse(data, spec.FormatFromName(key))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return s, nil
}

// WriteSpec stores a spec document. The format follows the key extension.
func (d *Documents) WriteSpec(ctx context.Context, key string, s *spec.Spec) error {
	format := spec.FormatFromName(key)
	data, err := spec.Encode(s, format)
	if err != nil {
		return err
	}
	contentType := "application/json"
	if format == spec.FormatYAML {
		contentType = "application/yaml"
	}
	return d.write(ctx, key, data, contentType)
}

// WriteReport stores v as an indented JSON document.
func (d *Documents) WriteReport(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return d.write(ctx, key, data, "application/json")
}

// ListSpecs returns the keys of the spec documents under prefix.
func (d *Documents) ListSpecs(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range d.client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		switch strings.ToLower(path.Ext(obj.Key)) {
		case ".json", ".yaml", ".yml":
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

func (d *Documents) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := d.client.GetObject(ctx, d.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, notFound(key, err)
	}
	return data, nil
}

func (d *Documents) write(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := d.client.PutObject(ctx, d.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func notFound(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, ErrDocumentNotFound)
	}
	return fmt.Errorf("read %s: %w", key, err)
}
