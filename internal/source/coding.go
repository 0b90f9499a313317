package source

import (
	"context"
	"os"
	"runtime"
	"strings"

	"devcert/internal/config"
)

// The Coding mirror hosts a fixed mkcert release for networks where the
// GitHub API is unreachable. It is pinned rather than queried because the
// mirror has no release-listing endpoint.
const (
	codingVersion     = "1.4.4"
	defaultMirrorBase = "https://liuweigl.coding.net/p/vite-plugin-mkcert/d/mkcert/git/releases/download/v1.4.4/"
)

// Coding serves download URLs from the pinned mirror. DEVCERT_MIRROR_BASE
// overrides the mirror location.
type Coding struct {
	base   string
	goos   string
	goarch string
}

// NewCoding builds a provider targeting the running platform.
func NewCoding() *Coding {
	c := &Coding{
		base:   defaultMirrorBase,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
	if override := os.Getenv("DEVCERT_MIRROR_BASE"); override != "" {
		c.base = override
	}
	return c
}

func (c *Coding) Name() string { return config.SourceCoding }

func (c *Coding) Latest(_ context.Context) (*Info, error) {
	name, ok := assetName(codingVersion, c.goos, c.goarch)
	if !ok {
		return nil, nil
	}
	base := c.base
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Info{DownloadURL: base + name, Version: codingVersion}, nil
}
