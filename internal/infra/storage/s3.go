package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/classicdental/dental-scheduler/internal/config"
)

// ErrDisabled is returned by Disabled for every upload.
var ErrDisabled = errors.New("object storage not configured")

// AvatarStore keeps profile pictures and returns their public URL.
type AvatarStore interface {
	PutAvatar(ctx context.Context, userID uint, webp []byte) (string, error)
}

// New returns an S3 store, or Disabled when no bucket is configured.
func New(cfg config.S3Config) AvatarStore {
	if !cfg.Enabled() {
		return Disabled{}
	}
	return NewS3Store(cfg)
}

// ======================================================
// S3
// ======================================================

type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Store(cfg config.S3Config) *S3Store {
	awsCfg := aws.Config{Region: cfg.Region}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBase(cfg),
	}
}

func publicBase(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// AvatarKey is the object key for a new avatar of userID.
func AvatarKey(userID uint) string {
	return fmt.Sprintf("avatars/%d/%s.webp", userID, uuid.NewString())
}

func (s *S3Store) PutAvatar(ctx context.Context, userID uint, webp []byte) (string, error) {
	key := AvatarKey(userID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(webp),
		ContentLength: aws.Int64(int64(len(webp))),
		ContentType:   aws.String("image/webp"),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// Disabled rejects uploads.
type Disabled struct{}

func (Disabled) PutAvatar(context.Context, uint, []byte) (string, error) {
	return "", ErrDisabled
}
