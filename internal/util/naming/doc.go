// Package naming derives object keys for archived Consul snapshots.
//
// Keys follow the pattern snapshot_{YYYY}_{MM}_{DD}_{HH}_{mm}_{ss}.tar.gz and
// are built from local wall-clock time with second granularity. Two runs
// within the same second produce the same key, so the later upload
// overwrites the earlier one.
package naming
