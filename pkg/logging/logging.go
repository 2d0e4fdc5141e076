package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mo-tomi/nowtask5/pkg/config"
	"github.com/sirupsen/logrus"
)

// New builds a logger from the log configuration. The returned func closes
// the log file, if one was opened.
func New(c config.LogConfig) (*logrus.Logger, func(), error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	cleanup := func() {}
	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		if c.File == "" {
			return nil, nil, fmt.Errorf("log output is file but no log file is set")
		}
		if err := os.MkdirAll(filepath.Dir(c.File), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	default:
		l.SetOutput(os.Stderr)
	}
	return l, cleanup, nil
}
