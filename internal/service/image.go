package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

const recipeImagePrefix = "recipes/images"

// ImageStore persists recipe images and returns the reference stored on the recipe.
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	// Delete removes an image previously returned by Save. References the
	// store does not own are ignored.
	Delete(ctx context.Context, ref string) error
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// decodeDataURL parses "data:<type>;base64,<payload>". isData is false when
// raw does not start with "data:".
func decodeDataURL(raw string) (data []byte, contentType string, isData bool, err error) {
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", false, nil
	}

	header, payload, found := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return nil, "", true, NewValidationError("image", "expected a base64 data URL")
	}

	contentType = strings.TrimSuffix(header, ";base64")
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", true, NewValidationError("image", fmt.Sprintf("unsupported image type %q", contentType))
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", true, NewValidationError("image", "invalid base64 payload")
	}
	if len(data) == 0 {
		return nil, "", true, NewValidationError("image", "image is empty")
	}

	return data, contentType, true, nil
}

func newImageKey(contentType string) string {
	return path.Join(recipeImagePrefix, uuid.New().String()+imageExtensions[contentType])
}

// S3ImageStore keeps recipe images in an S3 bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

// NewS3ImageStore creates an ImageStore backed by S3
func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

// Save uploads image data to S3 and returns the public URL
func (s *S3ImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	key := newImageKey(contentType)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := strings.TrimSuffix(s.s3Config.PublicURL, "/") + "/" + key
	logging.Debug().Str("url", publicURL).Msg("uploaded recipe image to S3")
	return publicURL, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, ref string) error {
	prefix := strings.TrimSuffix(s.s3Config.PublicURL, "/") + "/"
	if !strings.HasPrefix(ref, prefix) {
		return nil
	}

	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(strings.TrimPrefix(ref, prefix)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images below a directory served at baseURL.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	key := newImageKey(contentType)
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, ref string) error {
	rel, ok := strings.CutPrefix(ref, s.baseURL+"/")
	if !ok || !strings.HasPrefix(rel, recipeImagePrefix+"/") || strings.Contains(rel, "..") {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
