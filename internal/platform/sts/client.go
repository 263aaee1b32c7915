package sts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// ErrMissingCredentials is returned when STS accepts the request but the
// response carries no usable credentials.
var ErrMissingCredentials = errors.New("no credentials available")

// Options configures the STS client.
type Options struct {
	// Region is the STS region.
	Region string

	// Endpoint overrides the resolved STS endpoint when set.
	Endpoint string
}

// Request describes one AssumeRoleWithWebIdentity call.
type Request struct {
	RoleARN     string
	SessionName string
	Token       string
	Duration    time.Duration
}

// Exchanger wraps the STS client.
type Exchanger struct {
	sts *sts.Client
}

// NewExchanger creates a new STS exchanger.
func NewExchanger(ctx context.Context, opts Options) (*Exchanger, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sts.NewFromConfig(cfg, func(o *sts.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &Exchanger{sts: client}, nil
}

// Exchange trades the identity token for temporary credentials.
//
// A rejected token or role yields an error wrapping the SDK error. A
// successful response without credentials, or with any credential field
// empty, yields an error wrapping ErrMissingCredentials.
func (e *Exchanger) Exchange(ctx context.Context, req Request) (*Credentials, error) {
	out, err := e.sts.AssumeRoleWithWebIdentity(ctx, &sts.AssumeRoleWithWebIdentityInput{
		RoleArn:          aws.String(req.RoleARN),
		RoleSessionName:  aws.String(req.SessionName),
		WebIdentityToken: aws.String(req.Token),
		DurationSeconds:  aws.Int32(int32(req.Duration / time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS credentials for role %s%s: %w", req.RoleARN, errorCode(err), err)
	}

	if out.Credentials == nil {
		return nil, ErrMissingCredentials
	}

	creds := &Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expiration:      aws.ToTime(out.Credentials.Expiration),
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" || creds.SessionToken == "" {
		return nil, fmt.Errorf("%w: response is missing the access key, secret key or session token", ErrMissingCredentials)
	}

	return creds, nil
}

// errorCode renders the STS error code, if any, for diagnostics.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf(" (%s)", apiErr.ErrorCode())
	}
	return ""
}
