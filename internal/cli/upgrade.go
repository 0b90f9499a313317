package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"devcert/internal/logx"
	"devcert/internal/mkcert"
	"devcert/internal/tui"
	"devcert/internal/version"
)

var (
	upgradeAllowMajor bool
	upgradeCheckOnly  bool
)

func newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Update the managed mkcert binary",
		Long: `Upgrade replaces the managed mkcert binary when the configured source has
a newer release. A release across a major version is refused unless
--allow-major is set. With --check nothing is downloaded.`,
		RunE: runUpgrade,
	}

	cmd.Flags().BoolVar(&upgradeAllowMajor, "allow-major", false, "Take releases that cross a major version")
	cmd.Flags().BoolVar(&upgradeCheckOnly, "check", false, "Only report whether an update exists")

	return cmd
}

func runUpgrade(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, p, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	if upgradeCheckOnly {
		mgr, err := mkcert.NewManager(mkcert.Options{Config: cfg, Paths: p})
		if err != nil {
			return err
		}
		status := tui.NewStatusWriter(cmd.ErrOrStderr())
		status.Update("Checking for mkcert releases...")
		cmp, err := mgr.Check(ctx)
		status.Stop()
		if err != nil {
			return err
		}
		return writeComparison(cmd.OutOrStdout(), cmp, false)
	}

	logger, closer, err := logx.New(p, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	status := tui.NewStatusWriter(cmd.ErrOrStderr())
	defer status.Stop()
	status.Update("Checking for mkcert releases...")

	mgr, err := mkcert.NewManager(mkcert.Options{
		Logger:   logger,
		Config:   cfg,
		Paths:    p,
		Reporter: statusReporter{status},
	})
	if err != nil {
		return err
	}

	cmp, updated, err := mgr.Upgrade(ctx, upgradeAllowMajor)
	status.Stop()
	if err != nil {
		return err
	}
	return writeComparison(cmd.OutOrStdout(), cmp, updated)
}

// statusReporter mirrors step updates onto the setup spinner line.
type statusReporter struct {
	status *tui.StatusWriter
}

func (r statusReporter) Step(key, state, detail string) {
	msg := key + ": " + state
	if detail != "" {
		msg += " (" + detail + ")"
	}
	r.status.Update(msg)
}

func writeComparison(out io.Writer, cmp version.Comparison, updated bool) error {
	if outputJSON {
		payload := struct {
			version.Comparison
			Updated bool `json:"updated"`
		}{cmp, updated}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode upgrade json: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	current := cmp.CurrentVersion
	if current == "" {
		current = "none"
	}
	switch {
	case updated:
		fmt.Fprintf(out, "Upgraded mkcert %s -> %s\n", current, cmp.NextVersion)
	case !cmp.ShouldUpdate:
		fmt.Fprintf(out, "mkcert %s is up to date\n", current)
	case cmp.BreakingChange:
		fmt.Fprintf(out, "mkcert %s is available but crosses a major version from %s; rerun with --allow-major\n", cmp.NextVersion, current)
	default:
		fmt.Fprintf(out, "mkcert %s is available (current %s); run devcert upgrade\n", cmp.NextVersion, current)
	}
	return nil
}
