package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config contains S3 storage configuration
type S3Config struct {
	Endpoint        string // Optional: Custom endpoint for MinIO or DigitalOcean Spaces
	Region          string // AWS region or DO region (e.g., "us-east-1" or "sfo3")
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	UsePathStyle    bool   // Use path-style addressing (required for MinIO)
}

// S3Storage stores snapshots in S3-compatible object storage
type S3Storage struct {
	client *s3.Client
	bucket string
	config S3Config
}

// NewS3Storage creates a new S3Storage instance
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("S3 credentials are required")
	}

	// Build AWS config
	var opts []func(*config.LoadOptions) error

	opts = append(opts, config.WithRegion(cfg.Region))
	opts = append(opts, config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	))

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with custom options
	s3Opts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}

	client := s3.NewFromConfig(awsConfig, s3Opts)

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// SaveSnapshot saves a fetched HTML payload to S3.
// Returns the S3 key (path within bucket)
func (s *S3Storage) SaveSnapshot(content, slug string) (string, error) {
	// Generate S3 key: snapshots/YYYY/MM/slug.html
	now := time.Now()
	year := fmt.Sprintf("%04d", now.Year())
	month := fmt.Sprintf("%02d", int(now.Month()))

	key := filepath.Join("snapshots", year, month, slug+".html")
	// Normalize path separators for S3 (always use forward slashes)
	key = strings.ReplaceAll(key, "\\", "/")

	// Upload to S3
	ctx := context.Background()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(content)),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}

	return key, nil
}

// ReadSnapshot reads a stored snapshot from S3
func (s *S3Storage) ReadSnapshot(key string) (string, error) {
	ctx := context.Background()
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get snapshot from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot data from S3: %w", err)
	}

	return string(data), nil
}

// DeleteSnapshot deletes a snapshot from S3
func (s *S3Storage) DeleteSnapshot(key string) error {
	ctx := context.Background()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot from S3: %w", err)
	}

	return nil
}

// GetFullPath returns the S3 URL for a key
// This returns the key itself for S3, as it's already the full path
func (s *S3Storage) GetFullPath(key string) string {
	return key
}
