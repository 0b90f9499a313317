package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"devcert/internal/config"
	"devcert/internal/mkcert"
	"devcert/internal/paths"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the save directory",
		RunE:  runStatus,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, p, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	mgr, err := mkcert.NewManager(mkcert.Options{Config: cfg, Paths: p})
	if err != nil {
		return err
	}
	health := mgr.Health()
	checks := buildHealthChecks(cfg.Source, health)

	if outputJSON {
		return writeStatusJSON(cmd, p.Root, health, checks)
	}
	writeStatusTable(cmd, p, health, checks)
	return nil
}

func buildHealthChecks(sourceName string, h mkcert.Health) []healthCheck {
	checks := make([]healthCheck, 0, 3)

	switch {
	case h.BinaryExists && h.External:
		checks = append(checks, healthCheck{Name: "Binary", Status: "ok", Summary: h.BinaryPath + " (mkcert_path)"})
	case h.BinaryExists:
		checks = append(checks, healthCheck{Name: "Binary", Status: "ok", Summary: "mkcert " + orUnknown(h.Version) + " (managed)"})
	case sourceName == config.SourceLocal:
		checks = append(checks, healthCheck{Name: "Binary", Status: "error", Summary: "not installed, and source \"local\" never downloads"})
	default:
		checks = append(checks, healthCheck{Name: "Binary", Status: "warning", Summary: "not installed yet; devcert install downloads it"})
	}

	if h.CAPresent {
		checks = append(checks, healthCheck{Name: "CA", Status: "ok", Summary: "rootCA material in the save directory"})
	} else {
		checks = append(checks, healthCheck{Name: "CA", Status: "warning", Summary: "no CA yet; created on first install"})
	}

	switch {
	case h.KeyExists && h.CertExists && h.Fresh:
		summary := "generated"
		if len(h.Hosts) > 0 {
			summary = "covers " + strings.Join(h.Hosts, ", ")
		}
		checks = append(checks, healthCheck{Name: "Certificate", Status: "ok", Summary: summary})
	case h.KeyExists && h.CertExists:
		checks = append(checks, healthCheck{Name: "Certificate", Status: "warning", Summary: "files changed on disk; next install regenerates"})
	case h.KeyExists || h.CertExists:
		checks = append(checks, healthCheck{Name: "Certificate", Status: "warning", Summary: "key or certificate missing; next install regenerates"})
	default:
		checks = append(checks, healthCheck{Name: "Certificate", Status: "warning", Summary: "not generated yet"})
	}

	return checks
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func writeStatusTable(cmd *cobra.Command, p paths.SavePaths, h mkcert.Health, checks []healthCheck) {
	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("SAVE DIRECTORY:")+" "+p.Root)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tPATH\tSIZE\tMODIFIED")
	for _, f := range []struct{ name, path string }{
		{"binary", h.BinaryPath},
		{"key", h.KeyPath},
		{"cert", h.CertPath},
	} {
		size, modified := fileFacts(f.path)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.name, f.path, size, modified)
	}
	w.Flush()
}

// fileFacts returns a printable size and age for a path, or dashes when it
// does not exist.
func fileFacts(path string) (string, string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "-", "-"
	}
	return humanize.IBytes(uint64(info.Size())), humanize.Time(info.ModTime())
}

func writeStatusJSON(cmd *cobra.Command, root string, h mkcert.Health, checks []healthCheck) error {
	payload := struct {
		SaveDir string        `json:"save_dir"`
		Checks  []healthCheck `json:"checks"`
		Health  mkcert.Health `json:"health"`
	}{root, checks, h}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
