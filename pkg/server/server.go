package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mo-tomi/nowtask5/pkg/app"
	"github.com/mo-tomi/nowtask5/pkg/config"
	"github.com/sirupsen/logrus"
)

// Server serves the JSON API over an App.
type Server struct {
	http *http.Server
	log  *logrus.Entry
}

func New(a *app.App, cfg config.ServerConfig, version string, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(a, cfg, version, logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: logger.WithField("component", "server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// NewRouter builds the gin engine with CORS, logging and all routes.
func NewRouter(a *app.App, cfg config.ServerConfig, version string, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger.WithField("component", "http")))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, a, version)
	return r
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(started).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
