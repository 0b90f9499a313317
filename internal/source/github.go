package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"devcert/internal/config"
)

// defaultAPIURL is the latest-release endpoint for upstream mkcert.
// DEVCERT_GITHUB_API overrides it, mainly for tests and mirrors.
const defaultAPIURL = "https://api.github.com/repos/FiloSottile/mkcert/releases/latest"

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// GitHub queries the upstream release API for the newest mkcert build.
type GitHub struct {
	client *http.Client
	apiURL string
	goos   string
	goarch string
}

// NewGitHub builds a provider targeting the running platform.
func NewGitHub() *GitHub {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	g := &GitHub{
		client: rc.StandardClient(),
		apiURL: defaultAPIURL,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
	if override := os.Getenv("DEVCERT_GITHUB_API"); override != "" {
		g.apiURL = override
	}
	return g
}

func (g *GitHub) Name() string { return config.SourceGitHub }

// Latest fetches the newest release and picks the asset for this platform.
func (g *GitHub) Latest(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "devcert")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query latest release: unexpected status %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	version := strings.TrimPrefix(release.TagName, "v")
	want, ok := assetName(version, g.goos, g.goarch)
	if !ok {
		return nil, nil
	}
	for _, asset := range release.Assets {
		if asset.Name == want {
			return &Info{DownloadURL: asset.BrowserDownloadURL, Version: version}, nil
		}
	}
	return nil, nil
}
