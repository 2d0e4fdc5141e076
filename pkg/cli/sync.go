package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mo-tomi/nowtask5/pkg/app"
	"github.com/mo-tomi/nowtask5/pkg/auth"
	"github.com/mo-tomi/nowtask5/pkg/config"
	"github.com/mo-tomi/nowtask5/pkg/google"
	"github.com/mo-tomi/nowtask5/pkg/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func syncCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Exchange data with the configured mirrors",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace local data with the mirror's copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.app.Pull(cmd.Context())
			if err != nil {
				return fmt.Errorf("pull failed after %d records: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d records\n", n)
			return nil
		},
	})
	return cmd
}

func authCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Run the Google OAuth flow again and store a fresh token.

Place the credentials.json of a desktop OAuth client in the data directory
first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			logger, cleanup, err := o.logger(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			flow := auth.NewFlow(cfg.DataDir, logger)
			flow.Out = cmd.OutOrStdout()
			if err := flow.Reset(); err != nil {
				return err
			}
			srv, err := flow.CalendarService(cmd.Context())
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", flow.TokenPath())

			if cfg.Mirror.Calendar != "" {
				if _, err := google.FindCalendar(cmd.Context(), srv, cfg.Mirror.Calendar); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Calendar %q is reachable\n", cfg.Mirror.Calendar)
			}
			return nil
		},
	}
}

func (o *options) path() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultPath()
}

func configCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nowtask configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.path()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %s already exists, use --force to overwrite", path)
			}
			cfg := config.Default()
			if o.calendar != "" {
				cfg.Mirror.Calendar = o.calendar
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "# Effective configuration (defaults + file + environment)")
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the default Google Calendar to mirror to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.path()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg.Mirror.Calendar = args[0]
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the config file and data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.path()
			if err != nil {
				return err
			}
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Data:   %s\n", filepath.Clean(cfg.DataDir))
			return nil
		},
	})
	return cmd
}

func serveCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the JSON API under /api/v1 and run the periodic timer and gauge
work until interrupted.

Examples:
  nowtask serve
  nowtask serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if addr != "" {
				s.cfg.Server.Addr = addr
			}
			log := s.log.WithField("component", "cli")
			go func() {
				err := s.app.Run(ctx, func(t app.Tick) {
					entry := log.WithField("tick", t.Kind.String())
					if t.Gauge != nil {
						entry = entry.WithField("free", t.Gauge.FreeMinutes)
					}
					entry.Debug("tick")
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Warn("periodic work stopped")
				}
			}()

			return server.New(s.app, s.cfg.Server, cmd.Root().Version, s.log).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
