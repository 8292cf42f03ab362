package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/infra/config"
)

// S3Storage issues presigned PUT URLs against an S3-compatible bucket
// (AWS S3 or MinIO). Clients upload directly; the API never proxies bytes.
type S3Storage struct {
	cfg     config.S3Settings
	presign *s3.PresignClient
}

// NewS3Storage builds the S3 client and presigner from static credentials.
func NewS3Storage(ctx context.Context, cfg config.S3Settings) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
	}, nil
}

// PresignUpload returns a one-off presigned PUT for a fresh storage key.
func (s *S3Storage) PresignUpload(ctx context.Context, contentType string) (*port.UploadTicket, error) {
	ttl := s.cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	key := randomStorageKey()
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	return &port.UploadTicket{
		Key:       key,
		UploadURL: req.URL,
		FileURL:   s.publicURL(key),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

func randomStorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.NewString())
}
