package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/inspectgw/internal/adapters/sqlstore"
	"github.com/bft-labs/inspectgw/internal/cliconfig"
	"github.com/bft-labs/inspectgw/internal/credentials"
	"github.com/bft-labs/inspectgw/pkg/inspectgw"
	"github.com/bft-labs/inspectgw/pkg/log"
)

const helpDescription = `
Serve product inspection records over HTTP.

POST /search with {"start":"YYYY-MM-DD","end":"YYYY-MM-DD"} returns every
inspected product whose inspection started within the range, both days
inclusive. Each request opens its own database session.

Database credentials (user, password, dsn) are read from a JSON, TOML or
YAML file at startup; the process exits if the file is missing or incomplete.
With --dialect sqlite3 only dsn, the database file path, is required.
`

var exampleUsage = strings.TrimSpace(`
  inspectgw --credentials /etc/inspectgw/oracle_config.json
  inspectgw --dialect sqlite3 --credentials ./dev.json --log-level debug --log-rows
  INSPECTGW_CORS_ORIGINS=https://dashboard.example inspectgw --config ./inspectgw.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:           "inspectgw",
		Short:         "Serve product inspection records by date range",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			// INSPECTGW_* override the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cliconfig.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}

			required := sqlstore.CredentialRequirement(cfg.Dialect)
			creds, err := credentials.Load(cfg.CredentialsFile, required)
			if err != nil {
				return fmt.Errorf("credentials: %w", err)
			}
			holder := credentials.NewHolder(creds)

			logger.Info("configuration",
				log.String("listen", cfg.ListenAddr),
				log.String("dialect", cfg.Dialect),
				log.String("credentials_file", cfg.CredentialsFile),
				log.String("credentials", creds.String()),
				log.Strings("cors_origins", cfg.CORSOrigins),
				log.Bool("log_rows", cfg.LogRows),
				log.Bool("redact_storage_errors", cfg.RedactStorageErrors),
				log.Bool("watch_credentials", cfg.WatchCredentials),
			)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.WatchCredentials {
				watcher := credentials.NewWatcher(cfg.CredentialsFile, required, holder, logger, credentials.DefaultDebounceDelay)
				go func() {
					if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						logger.Error("credentials watcher stopped", log.Err(err))
					}
				}()
			}

			crashed := make(chan string, 1)
			onCrash := inspectgw.EventHandlerFunc(func(e inspectgw.StateChangeEvent) {
				if e.Current != inspectgw.StateCrashed {
					return
				}
				select {
				case crashed <- e.Reason:
				default:
				}
			})

			srv, err := inspectgw.New(cfg.ServerConfig(),
				inspectgw.WithLogger(logger),
				inspectgw.WithCredentials(holder),
				inspectgw.WithEventHandler(onCrash),
			)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			// Start with a background context: shutdown is driven by Stop
			// below so that its error is reported.
			if err := srv.Start(context.Background()); err != nil {
				return fmt.Errorf("start server: %w", err)
			}
			logger.Info("listening", log.String("addr", srv.Addr()))

			select {
			case <-ctx.Done():
				logger.Info("received signal, stopping...")
			case reason := <-crashed:
				return fmt.Errorf("server crashed: %s", reason)
			}

			if err := srv.Stop(); err != nil {
				return fmt.Errorf("stop server: %w", err)
			}
			logger.Info("stopped")
			return nil
		},
	}

	defaults := cliconfig.DefaultConfig()
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.inspectgw/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen", defaults.ListenAddr, "HTTP listen address")
	root.Flags().StringVar(&cfg.CredentialsFile, "credentials", defaults.CredentialsFile, "database credentials file (.json, .toml, .yaml)")
	root.Flags().StringVar(&cfg.Dialect, "dialect", defaults.Dialect, "database dialect (oracle, sqlite3)")
	root.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origins", defaults.CORSOrigins, "allowed CORS origins")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", defaults.LogFormat, "log format (console, json)")
	root.Flags().BoolVar(&cfg.LogRows, "log-rows", defaults.LogRows, "log search parameters and fetched rows at debug level")

	root.Flags().BoolVar(&cfg.RedactStorageErrors, "redact-storage-errors", defaults.RedactStorageErrors, "hide database error messages from clients")
	root.Flags().BoolVar(&cfg.WatchCredentials, "watch-credentials", defaults.WatchCredentials, "reload the credentials file when it changes")

	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", defaults.ShutdownTimeout, "graceful shutdown timeout")
	root.Flags().DurationVar(&cfg.ReadHeaderTimeout, "read-header-timeout", defaults.ReadHeaderTimeout, "timeout for reading request headers")

	if err := root.Execute(); err != nil {
		bootLog.Error("inspectgw", log.Err(err))
		os.Exit(1)
	}
}
