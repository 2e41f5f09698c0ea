package env

import (
	"os"
	"strings"
)

// Get reads a process environment variable, falling back when it is
// unset or blank. Blank counts as unset so a stray `VAR=` line in a
// .env file cannot wipe out a default.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
