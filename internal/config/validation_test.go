package config

import "testing"

func TestValidateDefaultsClean(t *testing.T) {
	results := Default().Validate()
	if len(results) != 0 {
		t.Fatalf("expected no findings for defaults, got %v", results)
	}
}

func TestValidateUnknownSource(t *testing.T) {
	cfg := Default()
	cfg.Source = "gitlab"

	results := cfg.Validate()
	if !HasErrors(results) {
		t.Fatalf("expected error for unknown source, got %v", results)
	}
}

func TestValidateRelativeMkcertPath(t *testing.T) {
	cfg := Default()
	cfg.MkcertPath = "bin/mkcert"

	results := cfg.Validate()
	if !HasErrors(results) {
		t.Fatalf("expected error for relative mkcert_path, got %v", results)
	}
}

func TestValidateLogLevelWarnsOnly(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"

	results := cfg.Validate()
	if len(results) != 1 {
		t.Fatalf("expected one finding, got %v", results)
	}
	if results[0].Level != "warning" {
		t.Fatalf("expected warning level, got %q", results[0].Level)
	}
	if HasErrors(results) {
		t.Fatal("log level finding should not be an error")
	}
}

func TestValidateMatchingFileNames(t *testing.T) {
	cfg := Default()
	cfg.KeyFileName = "same.pem"
	cfg.CertFileName = "same.pem"

	results := cfg.Validate()
	if !HasErrors(results) {
		t.Fatalf("expected error for matching file names, got %v", results)
	}
}
