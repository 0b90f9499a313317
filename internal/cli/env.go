package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"devcert/internal/config"
	"devcert/internal/paths"
)

// loadEnvironment resolves the working environment and fails on a config
// that validates with errors. Commands that run mkcert want this gate;
// clean uses resolveEnvironment directly so a broken config can still be
// cleaned up.
func loadEnvironment(cmd *cobra.Command) (config.Config, paths.SavePaths, error) {
	cfg, p, err := resolveEnvironment()
	if err != nil {
		return config.Config{}, paths.SavePaths{}, err
	}
	if err := reportValidation(cmd, cfg); err != nil {
		return config.Config{}, paths.SavePaths{}, err
	}
	return cfg, p, nil
}

// resolveEnvironment resolves the save directory, loads the YAML config,
// and derives the file paths every command works against. An explicit
// --save-dir beats the config's save_path; otherwise save_path relocates
// the artifacts while the config file stays where it was found.
func resolveEnvironment() (config.Config, paths.SavePaths, error) {
	p, err := paths.Resolve(saveDir)
	if err != nil {
		return config.Config{}, paths.SavePaths{}, err
	}

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = p.ConfigFile
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, paths.SavePaths{}, err
	}

	if cfg.SavePath != "" && saveDir == "" {
		p, err = paths.Resolve(cfg.SavePath)
		if err != nil {
			return config.Config{}, paths.SavePaths{}, err
		}
	}
	p.ConfigFile = cfgFile
	p = paths.ApplyFileNames(p, cfg.KeyFileName, cfg.CertFileName)
	return cfg, p, nil
}

// reportValidation prints warning-level findings to stderr and turns
// error-level findings into a command failure.
func reportValidation(cmd *cobra.Command, cfg config.Config) error {
	results := cfg.Validate()
	var errs []string
	for _, r := range results {
		switch r.Level {
		case "error":
			errs = append(errs, r.Message)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", r.Message)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
