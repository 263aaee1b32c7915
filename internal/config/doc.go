// Package config defines the run configuration of a snapshot export.
//
// A [Config] is built once at startup from command-line flags, environment
// variables and an optional YAML file, validated, and then passed by value
// through the pipeline. Five values are required and have no defaults: the
// role ARN, the web identity token file, the target bucket, the Consul
// snapshot endpoint and the Consul ACL token.
package config
