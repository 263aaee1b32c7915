package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingValue is wrapped by Validate when a required setting is empty.
var ErrMissingValue = errors.New("missing required configuration")

// ValidLogLevels contains the accepted log levels.
var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidLogFormats contains the accepted log encodings.
var ValidLogFormats = map[string]bool{
	"auto":    true,
	"console": true,
	"json":    true,
}

// ValidOutputs contains the accepted result renderings.
var ValidOutputs = map[string]bool{
	"text": true,
	"yaml": true,
	"json": true,
}

// Validate checks the configuration and returns a detailed error if validation fails.
// All missing required values are reported together.
func (c Config) Validate() error {
	if missing := c.missingRequired(); len(missing) > 0 {
		return fmt.Errorf("%w: %s (set the flags or the environment variables %s)",
			ErrMissingValue, strings.Join(missing, ", "), strings.Join(envNames(missing), ", "))
	}

	if c.Region == "" {
		return fmt.Errorf("%s must not be empty", KeyRegion)
	}
	if c.SessionName == "" {
		return fmt.Errorf("%s must not be empty", KeySessionName)
	}
	if c.SessionDuration < MinSessionDuration || c.SessionDuration > MaxSessionDuration {
		return fmt.Errorf("%s %s out of range: must be between %s and %s",
			KeySessionDuration, c.SessionDuration, MinSessionDuration, MaxSessionDuration)
	}
	if !ValidLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid %s %q: must be one of %v", KeyLogLevel, c.LogLevel, getMapKeys(ValidLogLevels))
	}
	if !ValidLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid %s %q: must be one of %v", KeyLogFormat, c.LogFormat, getMapKeys(ValidLogFormats))
	}
	if !ValidOutputs[c.Output] {
		return fmt.Errorf("invalid %s %q: must be one of %v", KeyOutput, c.Output, getMapKeys(ValidOutputs))
	}

	return nil
}

// missingRequired returns the keys of required settings that are empty, in declaration order.
func (c Config) missingRequired() []string {
	required := []struct {
		key   string
		value string
	}{
		{KeyRoleARN, c.RoleARN},
		{KeyWebIdentityTokenFile, c.WebIdentityTokenFile},
		{KeyBucket, c.Bucket},
		{KeyConsulHTTPAddr, c.ConsulHTTPAddr},
		{KeyConsulHTTPToken, c.ConsulHTTPToken},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

// EnvName returns the environment variable that supplies key.
func EnvName(key string) string {
	return strings.ToUpper(key)
}

func envNames(keys []string) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = EnvName(k)
	}
	return names
}

// getMapKeys returns the sorted keys of a map for error messages.
func getMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
