package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mo-tomi/nowtask5/pkg/model"
)

// Trash godoc
// @Summary      List trashed tasks
// @Tags         trash
// @Produce      json
// @Success      200  {object}  map[string][]model.TrashEntry
// @Router       /trash [get]
func (h *Handler) Trash(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.app.Trash()})
}

// Restore godoc
// @Summary      Restore a trashed task with its trashed subtasks
// @Tags         trash
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  map[string]string
// @Router       /trash/{id}/restore [post]
func (h *Handler) Restore(c *gin.Context) {
	t, err := h.app.Restore(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) Purge(c *gin.Context) {
	if err := h.app.PermanentDelete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CleanupTrash(c *gin.Context) {
	n, err := h.app.CleanupTrash(0)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": n})
}

func (h *Handler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.app.History()})
}

// FromHistory godoc
// @Summary      Re-create a task from the entry history
// @Tags         history
// @Produce      json
// @Param        index  path      int  true  "History position, 0 is the most recent"
// @Success      201    {object}  model.Task
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /history/{index} [post]
func (h *Handler) FromHistory(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid history index %q", c.Param("index")))
		return
	}
	t, err := h.app.CreateFromHistory(i)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) Routines(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Routines())
}

// SetRoutines godoc
// @Summary      Store routine settings and create today's routine tasks
// @Tags         routines
// @Accept       json
// @Produce      json
// @Param        body  body      model.Routines  true  "Routine settings keyed by type"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Router       /routines [put]
func (h *Handler) SetRoutines(c *gin.Context) {
	var r model.Routines
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.app.SetRoutines(r)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": n})
}
