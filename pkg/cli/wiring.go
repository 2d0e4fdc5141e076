package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/app"
	"github.com/mo-tomi/nowtask5/pkg/auth"
	"github.com/mo-tomi/nowtask5/pkg/clock"
	"github.com/mo-tomi/nowtask5/pkg/config"
	"github.com/mo-tomi/nowtask5/pkg/google"
	"github.com/mo-tomi/nowtask5/pkg/index"
	"github.com/mo-tomi/nowtask5/pkg/mirror"
	"github.com/mo-tomi/nowtask5/pkg/overdue"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/sirupsen/logrus"
)

// newStore opens the configured storage backend.
func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		s := storage.NewMemoryStore()
		s.MaxBytes = cfg.Storage.QuotaBytes
		return s, nil
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath, cfg.Storage.QuotaBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	default:
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return storage.NewFileStore(cfg.DataDir, cfg.Storage.QuotaBytes), nil
	}
}

type wiring struct {
	port    mirror.Port
	sweeper app.Sweeper
	closers []func()
}

// newMirror connects every configured mirror. A mirror that cannot be
// reached is logged and left out.
func newMirror(ctx context.Context, cfg *config.Config, store storage.Store, clk clock.Clock, logger *logrus.Logger) wiring {
	var (
		w     wiring
		ports mirror.Fanout
	)
	log := logger.WithField("component", "cli")

	if cfg.Mirror.RedisURL != "" {
		r, err := mirror.NewRedisFromURL(cfg.Mirror.RedisURL, cfg.Mirror.Namespace)
		if err != nil {
			log.WithError(err).Warn("invalid redis url, mirror disabled")
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := r.Ping(pingCtx)
			cancel()
			if err != nil {
				log.WithError(err).Warn("redis unreachable, mirror disabled")
				_ = r.Close()
			} else {
				ports = append(ports, r)
				w.closers = append(w.closers, func() { _ = r.Close() })
			}
		}
	}

	if cfg.Mirror.Calendar != "" {
		cm, err := newCalendarMirror(ctx, cfg, store, clk, logger)
		if err != nil {
			log.WithError(err).WithField("calendar", cfg.Mirror.Calendar).Warn("calendar mirror disabled")
		} else {
			ports = append(ports, cm)
			w.sweeper = cm
		}
	}

	switch len(ports) {
	case 0:
	case 1:
		w.port = ports[0]
	default:
		w.port = ports
	}
	return w
}

func newCalendarMirror(ctx context.Context, cfg *config.Config, store storage.Store, clk clock.Clock, logger *logrus.Logger) (*google.CalendarMirror, error) {
	idx, err := index.NewEventIndex(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load event index: %w", err)
	}
	table, err := overdue.NewTable(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue table: %w", err)
	}
	srv, calendarID, err := google.NewService(ctx, auth.NewFlow(cfg.DataDir, logger), cfg.Mirror.Calendar)
	if err != nil {
		return nil, err
	}
	return google.NewCalendarMirror(srv, calendarID, idx, table, clk, logger), nil
}
