package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkozyrev/softvault/pkg/app"
	"github.com/dkozyrev/softvault/pkg/log"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the catalog HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.NewApp(configPath)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)

		go func() { errCh <- a.Run() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Logger().Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		return a.Shutdown(shutdownCtx)
	},
}

func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
