package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rolebot/internal/db"
	"github.com/example/rolebot/internal/wire"
)

// ListsCmd returns the lists command
func ListsCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "lists <guild-id> [list-name]",
		Short: "Show a guild's role-code lists",
		Long: `Read a guild's role-code database without connecting to Discord.
With only a guild ID, print every list and its size; with a list name, print its entries.
Roles are shown by ID.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				dataDir = cfg.DataDir
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return listsRunE(ctx, cmd, dataDir, args)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding guild databases (overrides config)")
	return cmd
}

func listsRunE(ctx context.Context, cmd *cobra.Command, dataDir string, args []string) error {
	guildID := args[0]

	path := db.GuildDBPath(dataDir, guildID)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no database for guild %s at %s", guildID, path)
	}

	adapter, closeStore, err := wire.ListAdapter(ctx, dataDir, guildID, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to open guild %s: %w", guildID, err)
	}
	defer closeStore()

	if len(args) == 2 {
		return adapter.Show(ctx, args[1])
	}
	return adapter.Summary(ctx)
}
