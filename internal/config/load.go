// Package config loads the JSON run configurations for the array optimiser
// and the TDOA estimator.
//
// Every field is optional. Fields left out of a file fall back to the
// defaults exposed by the Get* accessors, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// validator is implemented by every config root.
type validator interface {
	Validate() error
}

// loadJSON reads a .json file of at most maxFileSize bytes into cfg and
// validates it.
func loadJSON(path string, cfg validator) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// findDefault locates a defaults file from the current directory or one of
// its parents, so tests in nested packages can find it.
func findDefault(rel string) (string, error) {
	candidates := []string{
		rel,
		"../" + rel,
		"../../" + rel,       // from internal/config/
		"../../../" + rel,    // deeper packages
		"../../../../" + rel, // even deeper
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("cannot find %s - run from repository root", rel)
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }
