// Package environment provides utilities for managing environment variables
// and configuration loading with support for namespacing.
package environment

import (
	"fmt"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file in the working
// directory. A missing file is not an error for callers that only use it
// for local development; check the returned error if it matters.
func LoadEnv() error {
	return godotenv.Load()
}

// LoadPath loads a specific env file, or the default .env when p is empty.
func LoadPath(p string) error {
	if p != "" {
		return godotenv.Load(p)
	}
	return godotenv.Load()
}

// GetNamespaceEnvKey constructs a namespaced environment variable key by
// combining a namespace prefix with the actual key name using an underscore.
// If no namespace is provided, it returns the key unchanged.
//
// Example:
//
//	key := GetNamespaceEnvKey("PLANNER", "PG_DATABASE_URL")
//	// Returns: "PLANNER_PG_DATABASE_URL"
func GetNamespaceEnvKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", namespace, key)
}
