package config

import (
	"fmt"
	"os"
)

// ReadIdentityToken returns the full contents of the web identity token
// file. Trailing whitespace is kept; the token is passed to STS verbatim.
func ReadIdentityToken(path string) (string, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read the AWS identity token file: %w", err)
	}
	return string(data), nil
}
