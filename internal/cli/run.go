package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/rolebot/internal/logging"
	"github.com/example/rolebot/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands",
		Long: `Connect to the Discord gateway, register slash commands, and serve
interactions until interrupted. The token comes from the config file or TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool(flagVerbose)
			logger, err := logging.New(cfg.LogLevel, verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			wire.Configure(cfg, logger)
			bot, err := wire.Bot()
			if err != nil {
				return fmt.Errorf("failed to initialize bot: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting", zap.String("data_dir", cfg.DataDir), zap.Strings("guilds", cfg.GuildIDs))
			runErr := bot.Run(ctx)
			return errors.Join(runErr, wire.Shutdown())
		},
	}
}
