// Package handlers implements the business logic behind the CLI commands.
//
// Handlers receive a resolved configuration from the commands package, build
// the platform clients and run the snapshot pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"gopkg.in/yaml.v3"

	"github.com/imamik/consul-snapshot/internal/config"
	"github.com/imamik/consul-snapshot/internal/logging"
	"github.com/imamik/consul-snapshot/internal/metrics"
	"github.com/imamik/consul-snapshot/internal/platform/consul"
	"github.com/imamik/consul-snapshot/internal/platform/s3"
	"github.com/imamik/consul-snapshot/internal/platform/sts"
	"github.com/imamik/consul-snapshot/internal/snapshot"
)

// Factory functions for dependency injection in tests.
var (
	newExchanger = func(ctx context.Context, cfg config.Config) (snapshot.Exchanger, error) {
		return sts.NewExchanger(ctx, sts.Options{
			Region:   cfg.Region,
			Endpoint: cfg.STSEndpoint,
		})
	}

	newFetcher = func(cfg config.Config) snapshot.Fetcher {
		return consul.NewClient(cfg.ConsulHTTPAddr, cfg.ConsulHTTPToken,
			consul.WithFailOnHTTPError(cfg.FailOnHTTPError))
	}

	newUploaderFactory = func(cfg config.Config) snapshot.UploaderFactory {
		return func(ctx context.Context, creds aws.CredentialsProvider) (snapshot.Uploader, error) {
			return s3.NewClient(ctx, s3.Options{
				Region:       cfg.Region,
				Endpoint:     cfg.S3Endpoint,
				UsePathStyle: cfg.S3UsePathStyle,
				Credentials:  creds,
			})
		}
	}

	now = time.Now

	logWriter io.Writer = os.Stderr
)

// Snapshot exports one Consul snapshot to S3 and writes the result to out.
//
// Every returned error is a *snapshot.Error.
func Snapshot(ctx context.Context, cfg config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return &snapshot.Error{Kind: snapshot.KindConfiguration, Err: err}
	}

	log, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: logWriter,
	})
	if err != nil {
		return &snapshot.Error{Kind: snapshot.KindConfiguration, Err: err}
	}

	exchanger, err := newExchanger(ctx, cfg)
	if err != nil {
		return &snapshot.Error{Kind: snapshot.KindCredentialExchange, Err: err}
	}

	recorder := metrics.New()
	pipeline := snapshot.New(cfg, snapshot.Dependencies{
		Exchanger:   exchanger,
		Fetcher:     newFetcher(cfg),
		NewUploader: newUploaderFactory(cfg),
		Now:         now,
	}, snapshot.WithLogger(log), snapshot.WithRecorder(recorder))

	result, runErr := pipeline.Run(ctx)

	// A configuration failure happens before any network call and stays local.
	if cfg.PushgatewayURL != "" && snapshot.KindOf(runErr) != snapshot.KindConfiguration {
		if err := recorder.Push(ctx, cfg.PushgatewayURL, metrics.DefaultJob); err != nil {
			log.Error(err, "metrics not pushed")
		}
	}

	if runErr != nil {
		log.Error(runErr, "snapshot failed")
		return runErr
	}

	return printResult(out, cfg.Output, result)
}

func printResult(out io.Writer, format string, result *snapshot.Result) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	default:
		_, err := fmt.Fprintf(out, "uploaded s3://%s/%s (etag %s)\n", result.Bucket, result.Key, result.ETag)
		return err
	}
}
