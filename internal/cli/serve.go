package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"wallet_state/internal/app"
	"wallet_state/internal/infrastructure/configloader"
	"wallet_state/internal/pkg/logger"
	"wallet_state/internal/pkg/metrics"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(cfgPath *string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, balance poller and price refresher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configloader.Load(*cfgPath)
			if err != nil {
				return err
			}
			if debug {
				cfg.Logging.Level = "debug"
			}

			zapLogger := logger.Init(cfg.Logging.Level)
			defer logger.Sync()
			metrics.MustRegisterMetrics()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := app.New(ctx, cfg, zapLogger)
			if err != nil {
				zapLogger.Error("Failed to initialize service", zap.Error(err))
				return err
			}
			if err := svc.Start(ctx); err != nil {
				zapLogger.Error("Failed to start service", zap.Error(err))
				return err
			}
			zapLogger.Info("Service started", zap.String("config", *cfgPath))

			<-ctx.Done()
			zapLogger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := svc.Stop(shutdownCtx); err != nil {
				zapLogger.Error("Error during shutdown", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
