package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"devcert/internal/config"
	"devcert/internal/logx"
	"devcert/internal/paths"
	"devcert/internal/store"
	"devcert/internal/tui"
)

var (
	initForce    bool
	initDefaults bool
)

// configYAML is the starter devcert.yaml. Every setting is spelled out with
// a comment so the file can be edited without consulting the docs.
const configYAML = `# devcert configuration.
version: %d

# Regenerate the certificate on every install run, even when nothing changed.
force: %t

# Check for a newer mkcert release during install. Releases crossing a major
# version are never taken automatically.
auto_upgrade: %t

# Where mkcert comes from: github (official releases), coding (pinned mirror
# for restricted networks), or local (never download).
source: %s

# Absolute path to an existing mkcert binary. Empty means the managed
# download is used.
mkcert_path: %q

# Relocate the generated files. Empty keeps them next to this file.
save_path: %q

# File names for the generated pair, relative to the save directory.
key_file_name: %s
cert_file_name: %s

# Console verbosity: debug, info, warn, or error. The log file always
# captures debug.
log_level: %s
`

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the save directory and a starter config",
		Long: `Init prepares the save directory: it creates the directory itself, the
logs directory, a commented devcert.yaml, and empty version and certificate
records. On a terminal it walks through the source, auto-upgrade and
log-level choices; elsewhere it writes defaults.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVar(&initForce, "force", false, "Rewrite devcert.yaml even if it exists")
	cmd.Flags().BoolVar(&initDefaults, "defaults", false, "Skip the interactive setup and write defaults")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	p, err := paths.Resolve(saveDir)
	if err != nil {
		return err
	}

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = p.ConfigFile
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := p.EnsureRoot(); err != nil {
		return err
	}
	if err := p.EnsureLogsDir(); err != nil {
		return err
	}

	logger, closer, err := logx.New(p, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Debugf("init: save=%s config=%s", p.Root, cfgFile)

	interactive := !initDefaults && tui.DetectMode(cmd.OutOrStdout(), false, outputJSON) == tui.ModeTUI
	if interactive {
		res, err := tui.RunSetup(cmd.OutOrStdout(), cfg)
		if err != nil {
			return err
		}
		if res.Cancelled {
			cmd.Println("Setup cancelled, nothing written.")
			return nil
		}
		cfg.Source = res.Source
		cfg.AutoUpgrade = res.AutoUpgrade
		cfg.LogLevel = res.LogLevel
	}

	existed, err := paths.FileExists(cfgFile)
	if err != nil {
		return fmt.Errorf("check config: %w", err)
	}

	created := make([]string, 0, 3)

	wrote, err := ensureConfigFile(cfgFile, cfg, initForce || interactive)
	if err != nil {
		return err
	}
	switch {
	case wrote && existed:
		logger.Debugf("rewrote config: %s", cfgFile)
		created = append(created, "updated "+filepath.Base(cfgFile))
	case wrote:
		logger.Debugf("wrote config: %s", cfgFile)
		created = append(created, "created "+filepath.Base(cfgFile))
	default:
		logger.Debugf("config exists: %s", cfgFile)
	}

	primed, err := primeRecords(p)
	if err != nil {
		return err
	}
	for _, name := range primed {
		logger.Debugf("primed record: %s", name)
		created = append(created, "created "+name)
	}

	if len(created) == 0 {
		cmd.Printf("Save directory already initialized at %s\n", p.Root)
		return nil
	}

	cmd.Printf("Initialized save directory at %s\n", p.Root)
	for _, entry := range created {
		cmd.Printf("  %s\n", entry)
	}
	return nil
}

// ensureConfigFile writes the commented starter config to path unless one is
// already there. overwrite forces the write. Reports whether a file was
// written.
func ensureConfigFile(path string, cfg config.Config, overwrite bool) (bool, error) {
	exists, err := paths.FileExists(path)
	if err != nil {
		return false, fmt.Errorf("check config: %w", err)
	}
	if exists && !overwrite {
		return false, nil
	}

	if err := os.WriteFile(path, renderConfig(cfg), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func renderConfig(cfg config.Config) []byte {
	return []byte(fmt.Sprintf(configYAML,
		cfg.Version, cfg.Force, cfg.AutoUpgrade, cfg.Source, cfg.MkcertPath,
		cfg.SavePath, cfg.KeyFileName, cfg.CertFileName, cfg.LogLevel))
}

// primeRecords creates empty version and certificate records so the first
// install starts from well-formed files. Existing records are left alone.
func primeRecords(p paths.SavePaths) ([]string, error) {
	records := []struct {
		path string
		init func() error
	}{
		{p.ConfigRecordFile, store.NewConfigStore(p.ConfigRecordFile).Init},
		{p.CertRecordFile, store.NewRecordStore(p.CertRecordFile).Init},
	}

	var created []string
	for _, rec := range records {
		exists, err := paths.FileExists(rec.path)
		if err != nil {
			return nil, fmt.Errorf("check record: %w", err)
		}
		if exists {
			continue
		}
		if err := rec.init(); err != nil {
			return nil, err
		}
		created = append(created, filepath.Base(rec.path))
	}
	return created, nil
}
