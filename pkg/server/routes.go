package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mo-tomi/nowtask5/pkg/app"
	"github.com/mo-tomi/nowtask5/pkg/storage"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, a *app.App, version string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": version})
	})

	api := r.Group("/api/v1")
	h := &Handler{app: a}
	registerViewRoutes(api, h)
	registerTaskRoutes(api, h)
	registerPreferenceRoutes(api, h)
	registerTrashRoutes(api, h)
	registerHistoryRoutes(api, h)
}

// Handler adapts HTTP requests to App calls.
type Handler struct {
	app *app.App
}

func registerViewRoutes(api *gin.RouterGroup, h *Handler) {
	api.GET("/view", h.View)
	api.GET("/state", h.State)
	api.GET("/gauge", h.Gauge)
	api.GET("/gauge/week", h.Week)
	api.GET("/calendar", h.Calendar)
	api.GET("/analytics", h.Analytics)
	api.POST("/sync/pull", h.Pull)
}

func registerTaskRoutes(api *gin.RouterGroup, h *Handler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.GET("/tasks/:id", h.Get)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.POST("/tasks/:id/toggle", h.Toggle)
	api.POST("/tasks/:id/timer/start", h.StartTimer)
	api.POST("/tasks/:id/timer/stop", h.StopTimer)
	api.GET("/tasks/:id/subtasks", h.Subtasks)
	api.PUT("/tasks/:id/subtasks", h.SaveSubtasks)
	api.PUT("/order", h.Reorder)
}

func registerPreferenceRoutes(api *gin.RouterGroup, h *Handler) {
	api.PUT("/preferences/sort", h.SetSort)
	api.PUT("/preferences/filter", h.SetFilter)
	api.PUT("/preferences/reference", h.SetReference)
	api.PUT("/preferences/editing", h.SetEditing)
}

func registerTrashRoutes(api *gin.RouterGroup, h *Handler) {
	api.GET("/trash", h.Trash)
	api.POST("/trash/cleanup", h.CleanupTrash)
	api.POST("/trash/:id/restore", h.Restore)
	api.DELETE("/trash/:id", h.Purge)
}

func registerHistoryRoutes(api *gin.RouterGroup, h *Handler) {
	api.GET("/history", h.History)
	api.POST("/history/:index", h.FromHistory)
	api.GET("/routines", h.Routines)
	api.PUT("/routines", h.SetRoutines)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasks.ErrInvalid), errors.Is(err, tasks.ErrMaxDepth):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
