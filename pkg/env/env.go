// Package env reads process environment variables for the few knobs that
// sit outside the envconfig-managed configuration, such as PORT injected
// by the hosting platform.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
