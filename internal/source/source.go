// Package source resolves where the mkcert binary for the current platform
// can be downloaded from.
package source

import (
	"context"
	"errors"
	"fmt"

	"devcert/internal/config"
)

// Info describes a downloadable mkcert release artifact.
type Info struct {
	DownloadURL string
	Version     string
}

// Provider supplies release information for one distribution channel. A nil
// Info with a nil error means the provider has no artifact for this
// platform.
type Provider interface {
	Name() string
	Latest(ctx context.Context) (*Info, error)
}

// ErrInvalidCustomSource reports a user-supplied provider that returned no
// download information.
var ErrInvalidCustomSource = errors.New("custom source returned no download info")

// UnsupportedPlatformError reports that no built-in source carries a
// prebuilt mkcert binary for the running platform.
type UnsupportedPlatformError struct {
	OS   string
	Arch string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf(
		"no prebuilt mkcert binary for %s/%s; download one from https://github.com/FiloSottile/mkcert/releases and set mkcert_path in the config",
		e.OS, e.Arch,
	)
}

// New returns the built-in provider for a source name from the config.
// The local source never downloads and has no provider.
func New(name string) (Provider, error) {
	switch name {
	case config.SourceGitHub:
		return NewGitHub(), nil
	case config.SourceCoding:
		return NewCoding(), nil
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

// supportedPlatforms lists the GOOS-GOARCH pairs upstream publishes
// binaries for.
var supportedPlatforms = map[string]bool{
	"darwin-amd64":  true,
	"darwin-arm64":  true,
	"linux-amd64":   true,
	"linux-arm64":   true,
	"linux-arm":     true,
	"windows-amd64": true,
	"windows-arm64": true,
}

// assetName builds the upstream release asset name for a platform, or
// reports false when the platform has no published binary.
func assetName(version, goos, goarch string) (string, bool) {
	if !supportedPlatforms[goos+"-"+goarch] {
		return "", false
	}
	name := fmt.Sprintf("mkcert-v%s-%s-%s", version, goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return name, true
}
