package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mo-tomi/nowtask5/pkg/app"
	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/config"
	"github.com/mo-tomi/nowtask5/pkg/logging"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	calendar   string
	verbose    bool
	noMirror   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "nowtask",
		Short: "nowtask - personal task list with a 24-hour free time gauge",
		Long: `nowtask keeps a hierarchical task list grouped by due day, tracks time
spent per task and shows how much of today is still free.

Data lives in ~/.config/nowtask by default and can be mirrored to Redis
and Google Calendar.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "config file (default ~/.config/nowtask/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&o.calendar, "calendar", "", "Google Calendar name to mirror to (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&o.noMirror, "offline", false, "Do not connect to any mirror")

	rootCmd.AddCommand(addCmd(o))
	rootCmd.AddCommand(listCmd(o))
	rootCmd.AddCommand(showCmd(o))
	rootCmd.AddCommand(editCmd(o))
	rootCmd.AddCommand(doneCmd(o))
	rootCmd.AddCommand(rmCmd(o))
	rootCmd.AddCommand(subtasksCmd(o))
	rootCmd.AddCommand(trashCmd(o))
	rootCmd.AddCommand(timerCmd(o))
	rootCmd.AddCommand(gaugeCmd(o))
	rootCmd.AddCommand(calendarCmd(o))
	rootCmd.AddCommand(statsCmd(o))
	rootCmd.AddCommand(sortCmd(o))
	rootCmd.AddCommand(routineCmd(o))
	rootCmd.AddCommand(historyCmd(o))
	rootCmd.AddCommand(syncCmd(o))
	rootCmd.AddCommand(authCmd(o))
	rootCmd.AddCommand(configCmd(o))
	rootCmd.AddCommand(serveCmd(o))
	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.calendar != "" {
		cfg.Mirror.Calendar = o.calendar
	}
	return cfg, nil
}

func (o *options) logger(cfg *config.Config) (*logrus.Logger, func(), error) {
	logger, cleanup, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger, cleanup, nil
}

// session is an opened App with everything that must be closed after it.
type session struct {
	cfg     *config.Config
	log     *logrus.Logger
	app     *app.App
	closers []func()
}

func (s *session) Close() {
	if err := s.app.Close(); err != nil {
		s.log.WithError(err).Warn("close failed")
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// open loads config, wires storage and mirrors and runs the startup
// sequence.
func (o *options) open(ctx context.Context) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, cleanupLog, err := o.logger(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: logger, closers: []func(){cleanupLog}}

	store, err := newStore(cfg)
	if err != nil {
		cleanupLog()
		return nil, err
	}

	clk := clock.System{}
	var w wiring
	if !o.noMirror {
		w = newMirror(ctx, cfg, store, clk, logger)
		s.closers = append(s.closers, w.closers...)
	}

	acc := storage.NewAccessor(store, w.port, logger)
	if cfg.Mirror.Timeout > 0 {
		acc.PushTimeout = cfg.Mirror.Timeout
	}
	s.app = app.New(acc, app.Options{
		Clock:          clk,
		Logger:         logger,
		TrashRetention: cfg.TrashRetention(),
		Sweeper:        w.sweeper,
	})
	if _, err := s.app.Startup(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
