// Package mkcert manages a locally trusted development certificate through
// the mkcert binary: obtaining the binary, keeping it current, and
// regenerating the key and certificate when the requested hosts or the
// on-disk files drift from the recorded state.
package mkcert

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"devcert/internal/config"
	"devcert/internal/download"
	"devcert/internal/logx"
	"devcert/internal/paths"
	"devcert/internal/source"
	"devcert/internal/store"
	"devcert/internal/version"
)

// Step names reported during long operations.
const (
	StepBinary      = "binary"
	StepCA          = "ca"
	StepCertificate = "certificate"
)

// Step statuses reported during long operations.
const (
	StatusResolving   = "resolving"
	StatusDownloading = "downloading"
	StatusGenerating  = "generating"
	StatusComplete    = "complete"
	StatusSkipped     = "skipped"
	StatusError       = "error"
)

// Actions Install reports for the certificate.
const (
	ActionRegenerated = "regenerated"
	ActionUnchanged   = "unchanged"
)

// Reasons a renew decides to regenerate, in priority order.
const (
	ReasonForce        = "force enabled"
	ReasonHostsChanged = "host list changed"
	ReasonFilesChanged = "certificate files changed on disk"
	ReasonCurrent      = "certificate is current"
)

// Reporter receives step updates during long operations.
type Reporter interface {
	Step(key, status, detail string)
}

type nopReporter struct{}

func (nopReporter) Step(string, string, string) {}

// Fetcher downloads an artifact to a destination path.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}

// Options configures a Manager. Logger, Runner, Fetcher and Reporter have
// working defaults. Source overrides the provider chosen from the config;
// a Source that yields no download info is treated as a caller mistake
// rather than an unsupported platform.
type Options struct {
	Logger   *zap.SugaredLogger
	Config   config.Config
	Paths    paths.SavePaths
	Source   source.Provider
	Runner   Runner
	Fetcher  Fetcher
	Reporter Reporter
}

// Manager owns the mkcert binary and certificate state for one save
// directory.
type Manager struct {
	log      *zap.SugaredLogger
	cfg      config.Config
	paths    paths.SavePaths
	provider source.Provider
	custom   bool
	runner   Runner
	fetcher  Fetcher
	reporter Reporter

	configStore *store.ConfigStore
	recordStore *store.RecordStore
	versions    *version.Manager
}

// NewManager wires a Manager from options. It touches no files; call Init
// to prepare the save directory.
func NewManager(opts Options) (*Manager, error) {
	m := &Manager{
		log:      opts.Logger,
		cfg:      opts.Config,
		paths:    opts.Paths,
		runner:   opts.Runner,
		fetcher:  opts.Fetcher,
		reporter: opts.Reporter,
	}
	if m.log == nil {
		m.log = logx.Nop()
	}
	if m.runner == nil {
		m.runner = CmdRunner{}
	}
	if m.fetcher == nil {
		m.fetcher = download.New()
	}
	if m.reporter == nil {
		m.reporter = nopReporter{}
	}

	if opts.Source != nil {
		m.provider = opts.Source
		m.custom = true
	} else if m.cfg.Source != config.SourceLocal {
		p, err := source.New(m.cfg.Source)
		if err != nil {
			return nil, err
		}
		m.provider = p
	}

	m.configStore = store.NewConfigStore(m.paths.ConfigRecordFile)
	m.recordStore = store.NewRecordStore(m.paths.CertRecordFile)
	m.versions = version.NewManager(m.configStore)
	return m, nil
}

// Init prepares the save directory and makes sure a usable mkcert binary is
// in place: first run installs one, later runs optionally upgrade it.
func (m *Manager) Init(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}

	binary, external, found := m.resolveBinary()
	switch {
	case !found && m.provider == nil:
		m.log.Warnf("no mkcert binary at %s and source %q never downloads; set mkcert_path or switch sources", binary, m.cfg.Source)
		m.reporter.Step(StepBinary, StatusSkipped, "no mkcert binary available")
	case !found:
		return m.installBinary(ctx)
	case m.cfg.AutoUpgrade && m.provider != nil:
		return m.autoUpgrade(ctx)
	case external:
		m.reporter.Step(StepBinary, StatusComplete, binary)
	default:
		m.reporter.Step(StepBinary, StatusComplete, "mkcert "+versionLabel(m.versions.Current()))
	}
	return nil
}

// InstallResult carries the certificate pair read back from disk along with
// what Install decided to do about it and why.
type InstallResult struct {
	Key    []byte
	Cert   []byte
	Action string
	Reason string
}

// Install makes sure a certificate covering hosts exists, then returns the
// key and certificate bytes from disk. An empty host list serves whatever
// is already there.
func (m *Manager) Install(ctx context.Context, hosts []string) (InstallResult, error) {
	res := InstallResult{Action: ActionUnchanged}
	if len(hosts) > 0 {
		action, reason, err := m.renew(ctx, hosts)
		if err != nil {
			return InstallResult{}, err
		}
		res.Action, res.Reason = action, reason
	}

	var err error
	res.Key, err = os.ReadFile(m.paths.KeyFile)
	if err != nil {
		return InstallResult{}, fmt.Errorf("read private key: %w", err)
	}
	res.Cert, err = os.ReadFile(m.paths.CertFile)
	if err != nil {
		return InstallResult{}, fmt.Errorf("read certificate: %w", err)
	}
	return res, nil
}

// Upgrade replaces the managed binary with the latest release. A jump
// across major versions only happens when allowMajor is set. The returned
// flag reports whether a new binary was actually installed.
func (m *Manager) Upgrade(ctx context.Context, allowMajor bool) (version.Comparison, bool, error) {
	var cmp version.Comparison
	if m.provider == nil {
		return cmp, false, fmt.Errorf("source %q does not support downloads", m.cfg.Source)
	}
	if err := m.prepare(); err != nil {
		return cmp, false, err
	}

	info, err := m.sourceInfo(ctx)
	if err != nil {
		return cmp, false, err
	}
	cmp = m.versions.Compare(info.Version)
	if !cmp.ShouldUpdate {
		return cmp, false, nil
	}
	if cmp.BreakingChange && !allowMajor {
		return cmp, false, nil
	}

	m.reporter.Step(StepBinary, StatusDownloading, "mkcert "+info.Version)
	if err := m.fetcher.Fetch(ctx, info.DownloadURL, m.paths.BinaryFile); err != nil {
		m.reporter.Step(StepBinary, StatusError, err.Error())
		return cmp, false, err
	}
	if err := m.versions.Update(info.Version); err != nil {
		return cmp, false, fmt.Errorf("record version: %w", err)
	}
	m.reporter.Step(StepBinary, StatusComplete, "mkcert "+info.Version)
	m.log.Infof("upgraded mkcert %s -> %s", versionLabel(cmp.CurrentVersion), info.Version)
	return cmp, true, nil
}

// Check compares the recorded version against the latest release without
// downloading anything.
func (m *Manager) Check(ctx context.Context) (version.Comparison, error) {
	if m.provider == nil {
		return version.Comparison{}, fmt.Errorf("source %q does not support downloads", m.cfg.Source)
	}
	m.configStore.Load()
	info, err := m.sourceInfo(ctx)
	if err != nil {
		return version.Comparison{}, err
	}
	return m.versions.Compare(info.Version), nil
}

// Version reports the recorded version of the managed binary, empty when no
// download has happened yet.
func (m *Manager) Version() string {
	m.configStore.Load()
	return m.versions.Current()
}

func (m *Manager) prepare() error {
	if err := m.paths.EnsureRoot(); err != nil {
		return err
	}
	if err := m.configStore.Init(); err != nil {
		return fmt.Errorf("init version record: %w", err)
	}
	if err := m.recordStore.Init(); err != nil {
		return fmt.Errorf("init certificate record: %w", err)
	}
	return nil
}

// resolveBinary picks the mkcert binary to run. An explicit mkcert_path
// wins when the file exists; a missing explicit path falls back to the
// managed binary with a warning.
func (m *Manager) resolveBinary() (binary string, external, found bool) {
	if m.cfg.MkcertPath != "" {
		if ok, _ := paths.FileExists(m.cfg.MkcertPath); ok {
			return m.cfg.MkcertPath, true, true
		}
		m.log.Warnf("configured mkcert_path %s not found, using managed binary", m.cfg.MkcertPath)
	}
	ok, _ := paths.FileExists(m.paths.BinaryFile)
	return m.paths.BinaryFile, false, ok
}

// sourceInfo asks the provider for the latest release and turns an empty
// answer into the error matching where the provider came from.
func (m *Manager) sourceInfo(ctx context.Context) (*source.Info, error) {
	info, err := m.provider.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		if m.custom {
			return nil, source.ErrInvalidCustomSource
		}
		return nil, &source.UnsupportedPlatformError{OS: runtime.GOOS, Arch: runtime.GOARCH}
	}
	return info, nil
}

func (m *Manager) installBinary(ctx context.Context) error {
	m.reporter.Step(StepBinary, StatusResolving, "locating latest mkcert release")
	info, err := m.sourceInfo(ctx)
	if err != nil {
		m.reporter.Step(StepBinary, StatusError, err.Error())
		return err
	}

	m.log.Infof("installing mkcert %s from %s", info.Version, m.provider.Name())
	m.reporter.Step(StepBinary, StatusDownloading, "mkcert "+info.Version)
	if err := m.fetcher.Fetch(ctx, info.DownloadURL, m.paths.BinaryFile); err != nil {
		m.reporter.Step(StepBinary, StatusError, err.Error())
		return err
	}
	if err := m.versions.Update(info.Version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	m.reporter.Step(StepBinary, StatusComplete, "mkcert "+info.Version)
	return nil
}

// autoUpgrade refreshes the managed binary when a newer release is out. A
// release across a major version is never taken automatically; a platform
// with no artifact skips the check, since the installed binary still works.
func (m *Manager) autoUpgrade(ctx context.Context) error {
	info, err := m.provider.Latest(ctx)
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}
	if info == nil {
		m.log.Warnf("source %s has no artifact for this platform, skipping upgrade check", m.provider.Name())
		m.reporter.Step(StepBinary, StatusComplete, "mkcert "+versionLabel(m.versions.Current()))
		return nil
	}

	cmp := m.versions.Compare(info.Version)
	switch {
	case !cmp.ShouldUpdate:
		m.log.Debugf("mkcert %s is current", versionLabel(cmp.CurrentVersion))
		m.reporter.Step(StepBinary, StatusComplete, "mkcert "+versionLabel(cmp.CurrentVersion)+" is current")
	case cmp.BreakingChange:
		m.log.Warnf("mkcert %s is available but crosses a major version from %s; run devcert upgrade --allow-major to take it",
			info.Version, versionLabel(cmp.CurrentVersion))
		m.reporter.Step(StepBinary, StatusSkipped, "mkcert "+info.Version+" crosses a major version")
	default:
		m.log.Infof("upgrading mkcert %s -> %s", versionLabel(cmp.CurrentVersion), info.Version)
		m.reporter.Step(StepBinary, StatusDownloading, "mkcert "+info.Version)
		if err := m.fetcher.Fetch(ctx, info.DownloadURL, m.paths.BinaryFile); err != nil {
			m.reporter.Step(StepBinary, StatusError, err.Error())
			return err
		}
		if err := m.versions.Update(info.Version); err != nil {
			return fmt.Errorf("record version: %w", err)
		}
		m.reporter.Step(StepBinary, StatusComplete, "mkcert "+info.Version)
	}
	return nil
}

// renew regenerates the certificate when something changed and does nothing
// otherwise. It reports the action taken and the reason behind it.
func (m *Manager) renew(ctx context.Context, hosts []string) (string, string, error) {
	m.recordStore.Load()
	reason, needed := m.changeReason(hosts)
	if !needed {
		m.log.Debugf("certificate for %s is current", strings.Join(hosts, ", "))
		m.reporter.Step(StepCA, StatusSkipped, "existing CA untouched")
		m.reporter.Step(StepCertificate, StatusSkipped, reason)
		return ActionUnchanged, reason, nil
	}

	m.log.Infof("regenerating certificate: %s", reason)
	if err := m.regenerate(ctx, hosts); err != nil {
		return "", "", err
	}
	return ActionRegenerated, reason, nil
}

// changeReason walks the regeneration triggers in priority order: forced,
// then a changed host set, then files that no longer match the recorded
// digests.
func (m *Manager) changeReason(hosts []string) (string, bool) {
	if m.cfg.Force {
		return ReasonForce, true
	}
	if !m.recordStore.Contains(hosts) {
		return ReasonHostsChanged, true
	}
	hash, err := store.HashFiles(m.paths.KeyFile, m.paths.CertFile)
	if err != nil || !m.recordStore.Equal(hash) {
		return ReasonFilesChanged, true
	}
	return ReasonCurrent, false
}

func (m *Manager) regenerate(ctx context.Context, hosts []string) error {
	binary, _, found := m.resolveBinary()
	if !found {
		m.log.Warnf("mkcert binary %s not found, attempting to run it anyway", binary)
	}
	if err := m.paths.EnsureRoot(); err != nil {
		return err
	}
	if err := m.retainExistingCA(ctx, binary); err != nil {
		return err
	}

	m.reporter.Step(StepCertificate, StatusGenerating, strings.Join(hosts, " "))
	args := append([]string{"-install", "-key-file", m.paths.KeyFile, "-cert-file", m.paths.CertFile}, hosts...)
	res, err := m.runner.Run(ctx, binary, args, RunOptions{Env: certEnv(m.paths.Root)})
	if out := strings.TrimSpace(res.Stdout); out != "" {
		m.log.Debugf("mkcert: %s", out)
	}
	if out := strings.TrimSpace(res.Stderr); out != "" {
		m.log.Debugf("mkcert: %s", out)
	}
	if err != nil {
		m.reporter.Step(StepCertificate, StatusError, err.Error())
		return fmt.Errorf("generate certificate: %w", err)
	}

	if err := m.verifyOutput(); err != nil {
		m.reporter.Step(StepCertificate, StatusError, err.Error())
		return err
	}

	hash, err := store.HashFiles(m.paths.KeyFile, m.paths.CertFile)
	if err != nil {
		return fmt.Errorf("hash generated files: %w", err)
	}
	if err := m.recordStore.Update(hosts, hash); err != nil {
		return fmt.Errorf("record certificate state: %w", err)
	}
	m.reporter.Step(StepCertificate, StatusComplete, strings.Join(hosts, " "))
	return nil
}

// verifyOutput rejects a run that produced only one of the two files. The
// halves are useless apart, so the survivor is removed and the record stays
// untouched.
func (m *Manager) verifyOutput() error {
	keyOK, _ := paths.FileExists(m.paths.KeyFile)
	certOK, _ := paths.FileExists(m.paths.CertFile)
	if keyOK && certOK {
		return nil
	}

	err := fmt.Errorf("mkcert finished without producing both files (key=%v, cert=%v)", keyOK, certOK)
	if keyOK {
		err = multierr.Append(err, os.Remove(m.paths.KeyFile))
	}
	if certOK {
		err = multierr.Append(err, os.Remove(m.paths.CertFile))
	}
	return err
}

// certEnv builds the environment for a mkcert run. CAROOT is pinned to the
// save directory so mkcert reads and writes CA material there, and
// JAVA_HOME is dropped so mkcert does not try to touch a Java trust store.
func certEnv(caroot string) []string {
	environ := os.Environ()
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, "CAROOT=") || strings.HasPrefix(kv, "JAVA_HOME=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "CAROOT="+caroot)
}

func versionLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
