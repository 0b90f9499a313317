package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"devcert/internal/config"
	"devcert/internal/mkcert"
)

func checkByName(t *testing.T, checks []healthCheck, name string) healthCheck {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s check in %v", name, checks)
	return healthCheck{}
}

func TestHealthChecksAllGood(t *testing.T) {
	h := mkcert.Health{
		BinaryExists: true,
		Version:      "1.4.4",
		CAPresent:    true,
		KeyExists:    true,
		CertExists:   true,
		Fresh:        true,
		Hosts:        []string{"localhost", "127.0.0.1"},
	}

	checks := buildHealthChecks(config.SourceGitHub, h)
	for _, c := range checks {
		if c.Status != "ok" {
			t.Errorf("%s = %s (%s), want ok", c.Name, c.Status, c.Summary)
		}
	}

	bin := checkByName(t, checks, "Binary")
	if !strings.Contains(bin.Summary, "1.4.4") {
		t.Errorf("binary summary %q missing version", bin.Summary)
	}
	cert := checkByName(t, checks, "Certificate")
	if !strings.Contains(cert.Summary, "localhost, 127.0.0.1") {
		t.Errorf("certificate summary %q missing hosts", cert.Summary)
	}
}

func TestHealthChecksMissingBinary(t *testing.T) {
	checks := buildHealthChecks(config.SourceGitHub, mkcert.Health{})

	bin := checkByName(t, checks, "Binary")
	if bin.Status != "warning" {
		t.Errorf("binary = %s, want warning before first install", bin.Status)
	}
}

func TestHealthChecksLocalSourceMissingBinary(t *testing.T) {
	checks := buildHealthChecks(config.SourceLocal, mkcert.Health{})

	bin := checkByName(t, checks, "Binary")
	if bin.Status != "error" {
		t.Errorf("binary = %s, want error when the source never downloads", bin.Status)
	}
	if !strings.Contains(bin.Summary, "local") {
		t.Errorf("summary %q does not name the source", bin.Summary)
	}
}

func TestHealthChecksExternalBinary(t *testing.T) {
	h := mkcert.Health{
		BinaryExists: true,
		External:     true,
		BinaryPath:   "/usr/local/bin/mkcert",
	}

	bin := checkByName(t, buildHealthChecks(config.SourceGitHub, h), "Binary")
	if bin.Status != "ok" {
		t.Errorf("binary = %s, want ok", bin.Status)
	}
	if !strings.Contains(bin.Summary, "/usr/local/bin/mkcert") {
		t.Errorf("summary %q missing the configured path", bin.Summary)
	}
}

func TestHealthChecksTamperedFiles(t *testing.T) {
	h := mkcert.Health{
		BinaryExists: true,
		KeyExists:    true,
		CertExists:   true,
		Fresh:        false,
	}

	cert := checkByName(t, buildHealthChecks(config.SourceGitHub, h), "Certificate")
	if cert.Status != "warning" {
		t.Errorf("certificate = %s, want warning for drifted files", cert.Status)
	}
	if !strings.Contains(cert.Summary, "changed") {
		t.Errorf("summary %q does not explain the drift", cert.Summary)
	}
}

func TestHealthChecksPartialPair(t *testing.T) {
	h := mkcert.Health{BinaryExists: true, KeyExists: true}

	cert := checkByName(t, buildHealthChecks(config.SourceGitHub, h), "Certificate")
	if cert.Status != "warning" {
		t.Errorf("certificate = %s, want warning for a lone key file", cert.Status)
	}
}

func TestFileFactsMissing(t *testing.T) {
	size, modified := fileFacts(filepath.Join(t.TempDir(), "nope.pem"))
	if size != "-" || modified != "-" {
		t.Errorf("got %q/%q, want dashes for a missing file", size, modified)
	}
}

func TestFileFactsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pem")
	writeTestFile(t, path, "contents")

	size, modified := fileFacts(path)
	if size == "-" || modified == "-" {
		t.Errorf("got %q/%q, want real facts for an existing file", size, modified)
	}
}
