package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// appVersion is stamped by release builds through -ldflags.
var appVersion = "dev"

var (
	saveDir    string
	configPath string
	outputJSON bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devcert",
		Short:   "Locally trusted development certificates via mkcert",
		Version: appVersion,
	}

	cmd.PersistentFlags().StringVar(&saveDir, "save-dir", "", "Path to the save directory (default: per-user data dir)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to devcert.yaml (default: inside the save directory)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newUpgradeCmd())
	cmd.AddCommand(newCleanCmd())

	return cmd
}
