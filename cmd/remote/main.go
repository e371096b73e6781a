package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tripsync/internal/app"
	"tripsync/internal/devserver"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr     string
		logDir   string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "remote",
		Short:        "Run the in-memory tripsync entity store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logDir == "" {
				logDir = filepath.Join(os.TempDir(), "tripsync-remote")
			}
			cfg := app.Config{
				Home: logDir,
				Log:  app.LogConfig{Level: logLevel, Console: true},
			}.WithDefaults()
			if err := app.InitLogging(cfg); err != nil {
				return err
			}
			defer app.Finalise()
			log := app.NewLogger(app.TagRemote)

			srv := &http.Server{
				Addr:              addr,
				Handler:           devserver.New(log),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Infof("remote listening on %s%s", addr, devserver.Prefix)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			log.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "directory for the log file (default: system temp dir)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}
