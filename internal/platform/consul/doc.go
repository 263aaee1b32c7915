// Package consul fetches point-in-time snapshots from a Consul cluster.
//
// The configured address is used verbatim and must already contain the
// snapshot path, e.g. https://consul.example.com:8501/v1/snapshot?stale.
// The whole response body is buffered in memory.
package consul
