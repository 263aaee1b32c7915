// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/consul-snapshot/cmd/consul-snapshot/handlers"
	"github.com/imamik/consul-snapshot/internal/config"
	"github.com/imamik/consul-snapshot/internal/snapshot"
)

// Root returns the root command for the consul-snapshot CLI.
//
// Running the root command exports one snapshot. Every flag can also be
// supplied through the environment variable of the same name in upper case.
func Root() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "consul-snapshot",
		Short: "Archive a Consul snapshot in S3 using web identity credentials",
		Long: `consul-snapshot takes a snapshot of a Consul cluster and uploads it to S3.

It exchanges a web identity token (for example a projected Kubernetes
service account token) for temporary AWS credentials, downloads the
snapshot from the Consul HTTP API and stores it as
snapshot_YYYY_MM_DD_HH_mm_ss.tar.gz in the target bucket.

Every flag can be set through the environment variable of the same name
in upper case, e.g. --consul_http_addr and CONSUL_HTTP_ADDR.

Example:
  consul-snapshot \
    --aws_role_arn arn:aws:iam::123456789012:role/consul-snapshot \
    --aws_web_identity_token_file /var/run/secrets/eks.amazonaws.com/serviceaccount/token \
    --s3_bucket_name ops-snapshots \
    --consul_http_addr https://consul.example.com:8501/v1/snapshot \
    --consul_http_token "$TOKEN"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return &snapshot.Error{Kind: snapshot.KindConfiguration, Err: err}
			}
			return handlers.Snapshot(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to an optional YAML configuration file")
	config.RegisterFlags(cmd.Flags())

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
