// Package objectstore archives rendered submission PDFs in S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

const pdfContentType = "application/pdf"

// Archive stores one PDF per submission reference.
type Archive struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

// NewArchive creates an Archive client. No request is made until first use.
func NewArchive(cfg config.ArchiveConfig, logger *slog.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}

	return &Archive{
		client: client,
		bucket: cfg.Bucket,
		log:    logger.With("adapter", "objectstore"),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("objectstore: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("objectstore: create bucket %s: %w", a.bucket, err)
	}
	a.log.InfoContext(ctx, "bucket created", slog.String("bucket", a.bucket))
	return nil
}

// Put stores a rendered document under its reference.
func (a *Archive) Put(ctx context.Context, reference string, pdf []byte) error {
	key := ObjectKey(reference)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(pdf), int64(len(pdf)), minio.PutObjectOptions{
		ContentType:  pdfContentType,
		UserMetadata: map[string]string{"reference": reference},
	})
	if err != nil {
		return fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	a.log.DebugContext(ctx, "document archived", slog.String("key", key), slog.Int("bytes", len(pdf)))
	return nil
}

// Get opens the archived document for reference. The caller closes the reader.
// A missing object returns domain.ErrNotFound.
func (a *Archive) Get(ctx context.Context, reference string) (io.ReadCloser, int64, error) {
	key := ObjectKey(reference)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, mapError(err, key)
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, mapError(err, key)
	}
	return obj, info.Size, nil
}

// ObjectKey returns the object name a reference is stored under.
func ObjectKey(reference string) string {
	return "documents/" + strings.ToUpper(reference) + ".pdf"
}

func mapError(err error, key string) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("objectstore: %s: %w", key, domain.ErrNotFound)
	}
	return fmt.Errorf("objectstore: get %s: %w", key, err)
}
