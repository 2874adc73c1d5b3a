// Package env reads process environment variables with sane defaults.
package env

import "os"

// Get looks up key in the process environment. Unset and empty values both
// fall back to the provided default.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
