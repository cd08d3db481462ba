package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rolebot/internal/config"
	"github.com/example/rolebot/internal/version"
)

// Global flag names.
const (
	flagConfig  = "config"
	flagVerbose = "verbose"
)

// RootCmd returns the rolebot command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "rolebot",
		Short:   "rolebot - Discord role distribution bot",
		Version: version.String(),
		Long: `rolebot hands out Discord roles: in bulk by username or CSV, through
persistent role buttons, and by redeeming codes from per-guild role-code lists.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String(flagConfig, config.DefaultPath, "path to the YAML config file")
	root.PersistentFlags().BoolP(flagVerbose, "v", false, "enable debug logging")

	root.AddCommand(RunCmd())
	root.AddCommand(ListsCmd())
	root.AddCommand(InitCmd())
	root.AddCommand(VersionCmd())

	return root
}

// loadConfig reads the config named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	return config.LoadConfig(path)
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
