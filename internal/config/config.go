package config

import "time"

// Configuration keys. Each key doubles as a command-line flag name and, in
// upper case, as the environment variable that can supply it.
const (
	KeyRoleARN              = "aws_role_arn"
	KeyWebIdentityTokenFile = "aws_web_identity_token_file"
	KeyBucket               = "s3_bucket_name"
	KeyConsulHTTPAddr       = "consul_http_addr"
	KeyConsulHTTPToken      = "consul_http_token"

	KeyRegion          = "aws_region"
	KeySessionName     = "aws_role_session_name"
	KeySessionDuration = "aws_session_duration"
	KeySTSEndpoint     = "sts_endpoint"
	KeyS3Endpoint      = "s3_endpoint"
	KeyS3UsePathStyle  = "s3_use_path_style"
	KeyFailOnHTTPError = "fail_on_http_error"
	KeyPushgatewayURL  = "pushgateway_url"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyOutput          = "output"
)

// Defaults for the optional settings.
const (
	DefaultRegion          = "eu-west-1"
	DefaultSessionName     = "dev"
	DefaultSessionDuration = 900 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "auto"
	DefaultOutput          = "text"
)

// STS accepts session durations between 15 minutes and 12 hours.
const (
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 12 * time.Hour
)

// Config holds everything a single snapshot run needs.
type Config struct {
	// RoleARN is the IAM role assumed with the web identity token.
	RoleARN string `mapstructure:"aws_role_arn"`

	// WebIdentityTokenFile points to the projected service account token.
	WebIdentityTokenFile string `mapstructure:"aws_web_identity_token_file"`

	// Bucket is the S3 bucket receiving the snapshot.
	Bucket string `mapstructure:"s3_bucket_name"`

	// ConsulHTTPAddr is the full snapshot URL, including /v1/snapshot.
	ConsulHTTPAddr string `mapstructure:"consul_http_addr"`

	// ConsulHTTPToken is sent verbatim in the X-Consul-Token header.
	ConsulHTTPToken string `mapstructure:"consul_http_token"`

	// Region is used for both the STS exchange and the S3 upload.
	Region string `mapstructure:"aws_region"`

	SessionName     string        `mapstructure:"aws_role_session_name"`
	SessionDuration time.Duration `mapstructure:"aws_session_duration"`

	// STSEndpoint and S3Endpoint override the SDK's endpoint resolution.
	STSEndpoint    string `mapstructure:"sts_endpoint"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3UsePathStyle bool   `mapstructure:"s3_use_path_style"`

	// FailOnHTTPError rejects snapshot responses with a non-2xx status
	// instead of uploading them.
	FailOnHTTPError bool `mapstructure:"fail_on_http_error"`

	// PushgatewayURL enables pushing run metrics when non-empty.
	PushgatewayURL string `mapstructure:"pushgateway_url"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Output    string `mapstructure:"output"`
}

// Default returns a Config with every optional setting at its default and
// the required settings empty.
func Default() Config {
	return Config{
		Region:          DefaultRegion,
		SessionName:     DefaultSessionName,
		SessionDuration: DefaultSessionDuration,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		Output:          DefaultOutput,
	}
}
