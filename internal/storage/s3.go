package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"brevly/internal/config"
)

// S3Uploader uploads blobs to an S3-compatible bucket (Cloudflare R2 in production)
// and derives public URLs from a configured public base.
type S3Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Uploader builds an S3 client against the configured endpoint.
func NewS3Uploader(ctx context.Context, cfg config.StorageConfig) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		// R2 does not support virtual-hosted bucket addressing.
		o.UsePathStyle = true
	})

	return &S3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// Upload puts the payload into the bucket under a unique key and returns its public URL.
// The key is prefixed with a random UUID so repeated exports never overwrite each other.
func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	key := fmt.Sprintf("%s-%s", uuid.New().String(), params.FileName)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(params.ContentType),
		Body:        bytes.NewReader(params.Body),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", params.FileName, err)
	}

	publicURL, err := url.JoinPath(u.publicBaseURL, key)
	if err != nil {
		return "", fmt.Errorf("failed to build public URL for %s: %w", key, err)
	}

	return publicURL, nil
}
