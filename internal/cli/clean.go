package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"devcert/internal/mkcert"
	"devcert/internal/paths"
)

var (
	cleanAll    bool
	cleanDryRun bool
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove generated certificate files from the save directory",
		Long: `Clean removes the generated key, certificate and certificate record.
With --all it also removes the managed mkcert binary, the copied CA
material, the version record and log files. devcert.yaml is never
touched.`,
		RunE: runClean,
	}

	cmd.Flags().BoolVar(&cleanAll, "all", false, "Also remove the binary, CA material, version record and logs")
	cmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	return cmd
}

type cleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freed_bytes"`
	Skipped    int   `json:"skipped"`
	DryRun     bool  `json:"dry_run"`
}

func runClean(cmd *cobra.Command, _ []string) error {
	_, p, err := resolveEnvironment()
	if err != nil {
		return err
	}

	exists, err := paths.DirExists(p.Root)
	if err != nil {
		return fmt.Errorf("stat save dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("save directory does not exist: %s", p.Root)
	}

	targets, err := cleanTargets(p, cleanAll)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	for _, path := range targets {
		removeFileEntry(path, out, &result)
	}

	label := "certificate"
	if cleanAll {
		label = "all"
	}
	return writeCleanResult(out, label, result)
}

// cleanTargets lists the files clean removes: the generated pair and its
// record by default; with all, everything devcert put into the save
// directory except the config.
func cleanTargets(p paths.SavePaths, all bool) ([]string, error) {
	targets := []string{p.KeyFile, p.CertFile, p.CertRecordFile}
	if !all {
		return existingOnly(targets)
	}

	targets = append(targets, p.BinaryFile, p.ConfigRecordFile)

	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, fmt.Errorf("scan save dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.Contains(entry.Name(), mkcert.RootCAMarker) {
			targets = append(targets, filepath.Join(p.Root, entry.Name()))
		}
	}

	logs, err := os.ReadDir(p.LogsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan logs dir: %w", err)
	}
	for _, entry := range logs {
		if !entry.IsDir() {
			targets = append(targets, filepath.Join(p.LogsDir, entry.Name()))
		}
	}

	return existingOnly(targets)
}

func existingOnly(candidates []string) ([]string, error) {
	var out []string
	for _, path := range candidates {
		ok, err := paths.FileExists(path)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, path)
		}
	}
	return out, nil
}

func removeFileEntry(path string, out io.Writer, result *cleanResult) {
	info, err := os.Stat(path)
	if err != nil {
		result.Skipped++
		return
	}
	size := info.Size()

	if result.DryRun {
		fmt.Fprintf(out, "would remove %s (%s)\n", path, humanize.IBytes(uint64(size)))
		result.Removed++
		result.FreedBytes += size
		return
	}

	if err := os.Remove(path); err != nil {
		if !outputJSON {
			fmt.Fprintf(out, "error removing %s: %v\n", path, err)
		}
		result.Skipped++
		return
	}

	result.Removed++
	result.FreedBytes += size
	if !outputJSON {
		fmt.Fprintf(out, "removed %s (%s)\n", path, humanize.IBytes(uint64(size)))
	}
}

func writeCleanResult(out io.Writer, label string, result cleanResult) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	action := "complete"
	if result.DryRun {
		action = "(dry run)"
	}
	fmt.Fprintf(out, "\nClean %s %s: %d removed, %s freed, %d skipped\n",
		label, action, result.Removed, humanize.IBytes(uint64(result.FreedBytes)), result.Skipped)
	return nil
}
