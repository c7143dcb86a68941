package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Marczeeee/allianz-calendar-app/internal/config"
	"github.com/Marczeeee/allianz-calendar-app/internal/db"
	"github.com/Marczeeee/allianz-calendar-app/internal/entries"
	"github.com/Marczeeee/allianz-calendar-app/internal/logging"
	"github.com/Marczeeee/allianz-calendar-app/internal/migrate"
	"github.com/Marczeeee/allianz-calendar-app/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the reservation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			ws := &web.Server{
				Store: entries.NewRepo(d),
				Log:   logger,
			}

			logger.Info("listening", zap.String("addr", cfg.ListenAddr))
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), cfg.ShutdownTimeout)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
