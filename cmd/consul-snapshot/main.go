// Package main is the entry point for the consul-snapshot CLI.
//
// consul-snapshot takes a point-in-time snapshot of a Consul cluster and
// archives it in S3. It authenticates to AWS with a workload identity token
// exchanged for short-lived credentials, so no static AWS secrets are
// needed. One invocation archives one snapshot.
//
// For detailed usage information, run:
//
//	consul-snapshot --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/consul-snapshot/cmd/consul-snapshot/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
