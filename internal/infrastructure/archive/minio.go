// Package archive guarda en MinIO la imagen confirmada de cada registro biométrico.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/pkg/config"
)

var _ ports.CaptureArchive = (*MinIOArchive)(nil)

// MinIOArchive implementa ports.CaptureArchive.
type MinIOArchive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinIOArchive crea el cliente; no verifica el bucket (ver EnsureBucket).
func NewMinIOArchive(cfg config.MinIOConfig) (*MinIOArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOArchive{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// EnsureBucket crea el bucket si no existe.
func (a *MinIOArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Store sube la imagen bajo {employeeID}/{fecha}/{uuid}.{ext} y devuelve la clave.
func (a *MinIOArchive) Store(ctx context.Context, employeeID string, frame ports.Frame) (string, error) {
	if len(frame.Image) == 0 {
		return "", nil
	}
	key := ObjectKey(employeeID, a.now(), uuid.New().String(), frame.ContentType)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(frame.Image), int64(len(frame.Image)), minio.PutObjectOptions{
		ContentType: contentTypeOrDefault(frame.ContentType),
		UserMetadata: map[string]string{
			"employee-id": employeeID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// ObjectKey arma la clave del objeto.
func ObjectKey(employeeID string, at time.Time, id, contentType string) string {
	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	return path.Join(employeeID, at.UTC().Format("2006-01-02"), id+"."+ext)
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return "image/jpeg"
	}
	return ct
}
