package config

import (
	"fmt"
	"path/filepath"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

var validSources = map[string]bool{
	SourceGitHub: true,
	SourceCoding: true,
	SourceLocal:  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate runs all validations against the config and returns structured
// results. An empty slice means the config is usable as-is.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult

	if !validSources[c.Source] {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("unknown source %q (expected github, coding, or local)", c.Source),
		})
	}

	if c.MkcertPath != "" && !filepath.IsAbs(c.MkcertPath) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("mkcert_path %q must be absolute", c.MkcertPath),
		})
	}

	if !validLogLevels[c.LogLevel] {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("unknown log_level %q (expected debug, info, warn, or error)", c.LogLevel),
		})
	}

	if c.KeyFileName == c.CertFileName {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "key_file_name and cert_file_name must differ",
		})
	}

	return results
}

// HasErrors reports whether any result is error level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}
