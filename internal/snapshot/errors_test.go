package snapshot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := newError(KindTransfer, cause)

	assert.Equal(t, "transfer error: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"configuration", newError(KindConfiguration, errors.New("x")), KindConfiguration},
		{"credential exchange", newError(KindCredentialExchange, errors.New("x")), KindCredentialExchange},
		{"missing credentials", newError(KindMissingCredentials, errors.New("x")), KindMissingCredentials},
		{"transfer", newError(KindTransfer, errors.New("x")), KindTransfer},
		{"upload", newError(KindUpload, errors.New("x")), KindUpload},
		{"wrapped", fmt.Errorf("run failed: %w", newError(KindUpload, errors.New("x"))), KindUpload},
		{"foreign", errors.New("x"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
