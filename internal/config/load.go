package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RegisterFlags adds one flag per configuration key to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyRoleARN, "", "The ARN of the AWS IAM role to assume (required)")
	fs.String(KeyWebIdentityTokenFile, "", "The file containing the AWS web identity token (required)")
	fs.String(KeyBucket, "", "The S3 bucket to upload to (required)")
	fs.String(KeyConsulHTTPAddr, "", "The Consul endpoint including the path /v1/snapshot (required)")
	fs.String(KeyConsulHTTPToken, "", "The Consul ACL token used to read the snapshot (required)")

	fs.String(KeyRegion, DefaultRegion, "AWS region used for STS and S3")
	fs.String(KeySessionName, DefaultSessionName, "Session name for the assumed role")
	fs.Duration(KeySessionDuration, DefaultSessionDuration, "Validity of the temporary credentials")
	fs.String(KeySTSEndpoint, "", "Override the STS endpoint URL")
	fs.String(KeyS3Endpoint, "", "Override the S3 endpoint URL (S3-compatible stores)")
	fs.Bool(KeyS3UsePathStyle, false, "Use path-style S3 addressing")
	fs.Bool(KeyFailOnHTTPError, false, "Abort instead of uploading when Consul answers with a non-2xx status")
	fs.String(KeyPushgatewayURL, "", "Push run metrics to this Prometheus Pushgateway")
	fs.String(KeyLogLevel, DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.String(KeyLogFormat, DefaultLogFormat, "Log format: auto, console, json")
	fs.String(KeyOutput, DefaultOutput, "Result output format: text, yaml, json")
}

// Load resolves the configuration from the flags in fs, the environment and
// an optional YAML file. Explicit flags win over environment variables,
// which win over the file, which wins over flag defaults.
//
// Load does not validate; call Config.Validate before use.
func Load(fs *pflag.FlagSet, file string) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
