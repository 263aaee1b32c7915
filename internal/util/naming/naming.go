package naming

import "time"

const (
	// SnapshotPrefix is prepended to every snapshot key.
	SnapshotPrefix = "snapshot_"

	// SnapshotSuffix is appended to every snapshot key.
	SnapshotSuffix = ".tar.gz"

	// SnapshotContentType is the media type declared on uploaded snapshots.
	SnapshotContentType = "application/x-compressed-tar"

	timestampLayout = "2006_01_02_15_04_05"
)

// SnapshotKey returns the object key for a snapshot taken at t.
// The time is formatted in its own location; callers pass time.Now() for
// local time.
func SnapshotKey(t time.Time) string {
	return SnapshotPrefix + t.Format(timestampLayout) + SnapshotSuffix
}
