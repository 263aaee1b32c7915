// Package s3 uploads snapshot archives to Amazon S3 or an S3-compatible
// object store.
//
// The client is built per run from the temporary credentials issued by STS
// and performs a single PutObject with the whole payload. Puts are atomic,
// so a failed upload leaves no partial object behind.
package s3
