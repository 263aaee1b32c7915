package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Options configures the S3 client.
type Options struct {
	// Region is the bucket region.
	Region string

	// Endpoint overrides the resolved S3 endpoint when set.
	Endpoint string

	// UsePathStyle selects path-style addressing, needed by most
	// S3-compatible stores.
	UsePathStyle bool

	// Credentials signs every request.
	Credentials aws.CredentialsProvider
}

// PutResult is the store's acknowledgment of an upload.
type PutResult struct {
	ETag      string
	VersionID string
}

// Client wraps the S3 client.
type Client struct {
	s3     *s3.Client
	region string
}

// NewClient creates a new S3 client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(opts.Credentials),
		config.WithRegion(opts.Region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &Client{s3: client, region: opts.Region}, nil
}

// PutObject uploads data to a bucket under key with the given content type.
func (c *Client) PutObject(ctx context.Context, bucketName, key, contentType string, data []byte) (*PutResult, error) {
	out, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s in bucket %s%s: %w", key, bucketName, errorCode(err), err)
	}

	return &PutResult{
		ETag:      aws.ToString(out.ETag),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// errorCode renders the S3 error code, if any, for diagnostics.
// S3-compatible services may not return the exact SDK error types, so the
// generic API error is used.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf(" (%s)", apiErr.ErrorCode())
	}
	return ""
}
