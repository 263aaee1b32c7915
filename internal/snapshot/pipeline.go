package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-logr/logr"

	"github.com/imamik/consul-snapshot/internal/config"
	"github.com/imamik/consul-snapshot/internal/metrics"
	"github.com/imamik/consul-snapshot/internal/platform/consul"
	"github.com/imamik/consul-snapshot/internal/platform/s3"
	"github.com/imamik/consul-snapshot/internal/platform/sts"
	"github.com/imamik/consul-snapshot/internal/util/naming"
)

// Exchanger trades an identity token for temporary credentials.
type Exchanger interface {
	Exchange(ctx context.Context, req sts.Request) (*sts.Credentials, error)
}

// Fetcher reads a snapshot from Consul.
type Fetcher interface {
	Snapshot(ctx context.Context) (*consul.Snapshot, error)
}

// Uploader writes one object to the store.
type Uploader interface {
	PutObject(ctx context.Context, bucketName, key, contentType string, data []byte) (*s3.PutResult, error)
}

// UploaderFactory builds an Uploader signed with the temporary credentials.
type UploaderFactory func(ctx context.Context, creds aws.CredentialsProvider) (Uploader, error)

// Dependencies are the collaborators of a Pipeline.
type Dependencies struct {
	Exchanger   Exchanger
	Fetcher     Fetcher
	NewUploader UploaderFactory

	// Now returns the wall-clock time used for the object key. Defaults to time.Now.
	Now func() time.Time
}

// Result describes a successful run.
type Result struct {
	Bucket            string        `json:"bucket" yaml:"bucket"`
	Key               string        `json:"key" yaml:"key"`
	ETag              string        `json:"etag" yaml:"etag"`
	VersionID         string        `json:"versionId,omitempty" yaml:"versionId,omitempty"`
	Size              int           `json:"size" yaml:"size"`
	SourceStatus      int           `json:"sourceStatus" yaml:"sourceStatus"`
	SnapshotIndex     string        `json:"snapshotIndex,omitempty" yaml:"snapshotIndex,omitempty"`
	CredentialsExpiry time.Time     `json:"credentialsExpiry" yaml:"credentialsExpiry"`
	Duration          time.Duration `json:"duration" yaml:"duration"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to logr.Discard().
func WithLogger(l logr.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// Pipeline exports one snapshot.
type Pipeline struct {
	cfg      config.Config
	deps     Dependencies
	log      logr.Logger
	recorder *metrics.Recorder
}

// New creates a pipeline for cfg.
func New(cfg config.Config, deps Dependencies, opts ...Option) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	p := &Pipeline{
		cfg:      cfg,
		deps:     deps,
		log:      logr.Discard(),
		recorder: metrics.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the stages in order and stops at the first failure.
// Every returned error is a *Error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result, err := p.run(ctx)
	if err != nil {
		p.recorder.RecordFailure(string(KindOf(err)))
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := p.cfg.Validate(); err != nil {
		return nil, newError(KindConfiguration, err)
	}
	token, err := config.ReadIdentityToken(p.cfg.WebIdentityTokenFile)
	if err != nil {
		return nil, newError(KindConfiguration, err)
	}

	creds, err := p.exchange(ctx, token)
	if err != nil {
		return nil, err
	}

	snap, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	key := naming.SnapshotKey(p.deps.Now())

	put, err := p.upload(ctx, creds, key, snap.Data)
	if err != nil {
		return nil, err
	}

	p.recorder.RecordSuccess(len(snap.Data), p.deps.Now())

	return &Result{
		Bucket:            p.cfg.Bucket,
		Key:               key,
		ETag:              put.ETag,
		VersionID:         put.VersionID,
		Size:              len(snap.Data),
		SourceStatus:      snap.StatusCode,
		SnapshotIndex:     snap.Index,
		CredentialsExpiry: creds.Expiration,
		Duration:          time.Since(start),
	}, nil
}

func (p *Pipeline) exchange(ctx context.Context, token string) (*sts.Credentials, error) {
	p.log.Info("exchanging web identity token",
		"role", p.cfg.RoleARN, "session", p.cfg.SessionName, "duration", p.cfg.SessionDuration.String())

	start := time.Now()
	creds, err := p.deps.Exchanger.Exchange(ctx, sts.Request{
		RoleARN:     p.cfg.RoleARN,
		SessionName: p.cfg.SessionName,
		Token:       token,
		Duration:    p.cfg.SessionDuration,
	})
	p.recorder.ObserveStage(metrics.StageExchange, time.Since(start))
	if err != nil {
		if errors.Is(err, sts.ErrMissingCredentials) {
			return nil, newError(KindMissingCredentials, err)
		}
		return nil, newError(KindCredentialExchange, err)
	}

	p.log.Info("obtained temporary credentials",
		"accessKeyID", creds.AccessKeyID, "expiration", creds.Expiration.Format(time.RFC3339))
	return creds, nil
}

func (p *Pipeline) fetch(ctx context.Context) (*consul.Snapshot, error) {
	p.log.Info("fetching snapshot", "endpoint", redactURL(p.cfg.ConsulHTTPAddr))

	start := time.Now()
	snap, err := p.deps.Fetcher.Snapshot(ctx)
	p.recorder.ObserveStage(metrics.StageFetch, time.Since(start))
	if err != nil {
		return nil, newError(KindTransfer, err)
	}

	if !snap.Successful() {
		p.log.Info("consul answered with a non-2xx status, uploading the response body anyway",
			"status", snap.StatusCode, "bytes", len(snap.Data))
	}
	p.log.V(1).Info("fetched snapshot",
		"status", snap.StatusCode, "bytes", len(snap.Data), "contentType", snap.ContentType, "index", snap.Index)
	return snap, nil
}

func (p *Pipeline) upload(ctx context.Context, creds *sts.Credentials, key string, data []byte) (*s3.PutResult, error) {
	p.log.Info("uploading snapshot", "bucket", p.cfg.Bucket, "key", key, "bytes", len(data))

	start := time.Now()
	defer func() { p.recorder.ObserveStage(metrics.StageUpload, time.Since(start)) }()

	uploader, err := p.deps.NewUploader(ctx, creds.Provider())
	if err != nil {
		return nil, newError(KindUpload, fmt.Errorf("failed to create S3 client: %w", err))
	}

	put, err := uploader.PutObject(ctx, p.cfg.Bucket, key, naming.SnapshotContentType, data)
	if err != nil {
		return nil, newError(KindUpload, err)
	}

	p.log.Info("snapshot uploaded", "bucket", p.cfg.Bucket, "key", key, "etag", put.ETag)
	return put, nil
}

// redactURL drops user info and the query string, either of which may carry a token.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
