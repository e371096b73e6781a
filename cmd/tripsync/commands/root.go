package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tripsync/internal/app"
	"tripsync/internal/domain"
)

var (
	home       string
	configPath string
	remoteURL  string
	user       string
	cacheKind  string
	passphrase string
	currency   string
	verbose    bool

	cfg    app.Config
	appCtx *app.Wire
)

// drainTimeout bounds the wait for background remote writes before exit.
const drainTimeout = 15 * time.Second

func Execute() error {
	root := &cobra.Command{
		Use:          "tripsync",
		Short:        "Plan trips, split expenses and book transport, online or off",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := app.DefaultHome()
				if err != nil {
					return err
				}
				home = dir
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if configPath == "" {
				configPath = filepath.Join(home, "config.yaml")
			}

			loaded, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = applyFlags(cmd, loaded)
			cfg.Home = home
			cfg.Passphrase = passphrase
			cfg = cfg.WithDefaults()
			cfg.OnRemoteError = func(kind domain.Kind, op string, id domain.ID, err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %s %s did not reach the server: %v\n", kind, op, id, err)
			}

			if err := app.InitLogging(cfg); err != nil {
				return err
			}
			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			appCtx = w

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout+5*time.Second)
			defer cancel()
			appCtx.Load(ctx)
			for _, d := range []struct {
				name     string
				diverged bool
			}{
				{"itineraries", appCtx.Itineraries.Diverged()},
				{"expenses", appCtx.Expenses.Diverged()},
				{"bookings", appCtx.Bookings.Diverged()},
			} {
				if d.diverged {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: server has no %s; showing the local copy\n", d.name)
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdown(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "data dir (default ~/.tripsync)")
	pf.StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	pf.StringVar(&remoteURL, "remote", "", "remote store base URL (default "+app.DefaultRemoteURL+")")
	pf.StringVar(&user, "user", "", "your email, used to tell your trips from shared ones")
	pf.StringVar(&cacheKind, "cache", "", "local cache backend: file, leveldb or memory (default file)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase to encrypt the local cache")
	pf.StringVar(&currency, "currency", "", "display currency (default "+app.DefaultCurrency+")")
	pf.BoolVar(&verbose, "verbose", false, "also log to the console")

	root.AddCommand(itineraryCmd(), expenseCmd(), bookingCmd(), settleCmd(), orphansCmd())
	err := root.Execute()
	if appCtx != nil {
		// PersistentPostRunE does not run when the subcommand fails.
		_ = shutdown(context.Background())
	}
	return err
}

// applyFlags overrides file values with the flags given on the command line.
func applyFlags(cmd *cobra.Command, c app.Config) app.Config {
	flags := cmd.Flags()
	if flags.Changed("remote") {
		c.RemoteURL = remoteURL
	}
	if flags.Changed("user") {
		c.User = user
	}
	if flags.Changed("cache") {
		c.Cache = cacheKind
	}
	if flags.Changed("currency") {
		c.Currency = currency
	}
	if verbose {
		c.Log.Console = true
		if c.Log.Level == "" {
			c.Log.Level = "debug"
		}
	}
	return c
}

func shutdown(parent context.Context) error {
	if appCtx == nil {
		return nil
	}
	w := appCtx
	appCtx = nil
	defer app.Finalise()
	defer w.Close()

	ctx, cancel := context.WithTimeout(parent, drainTimeout)
	defer cancel()
	return w.Wait(ctx)
}
