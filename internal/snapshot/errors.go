package snapshot

import (
	"errors"
	"fmt"
)

// Kind classifies a failed run. The set is closed.
type Kind string

const (
	// KindConfiguration covers missing settings and an unreadable token
	// file. It is always reported before any network call.
	KindConfiguration Kind = "configuration"

	// KindCredentialExchange means STS rejected the token or role, or could not be reached.
	KindCredentialExchange Kind = "credential exchange"

	// KindMissingCredentials means STS answered without usable credentials.
	KindMissingCredentials Kind = "missing credentials"

	// KindTransfer means the snapshot could not be fetched from Consul.
	KindTransfer Kind = "transfer"

	// KindUpload means the object store rejected the upload.
	KindUpload Kind = "upload"
)

// Error is the terminal error of a run.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of err, or "" if err is not a run error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
