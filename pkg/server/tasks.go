package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
)

// List godoc
// @Summary      All active tasks in storage order
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  map[string][]model.Task
// @Router       /tasks [get]
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.app.Tasks()})
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        quick  query     bool         false  "also record the title in the entry history"
// @Param        body   body      tasks.Draft  true   "Task body"
// @Success      201    {object}  model.Task
// @Failure      400    {object}  map[string]string
// @Failure      507    {object}  map[string]string
// @Router       /tasks [post]
func (h *Handler) Create(c *gin.Context) {
	var d tasks.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}
	create := h.app.Create
	if c.Query("quick") == "true" || c.Query("quick") == "1" {
		create = h.app.QuickAdd
	}
	t, err := create(d)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Get godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	t, err := h.app.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Update godoc
// @Summary      Partially update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Task ID"
// @Param        body  body      tasks.Patch  true  "Partial update"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	var p tasks.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.app.Update(c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete godoc
// @Summary      Move a task and its subtasks to the trash
// @Tags         tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.app.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Toggle(c *gin.Context) {
	h.respondTask(c, h.app.ToggleComplete)
}

func (h *Handler) StartTimer(c *gin.Context) {
	h.respondTask(c, h.app.StartTimer)
}

func (h *Handler) StopTimer(c *gin.Context) {
	h.respondTask(c, h.app.StopTimer)
}

func (h *Handler) respondTask(c *gin.Context, fn func(string) (model.Task, error)) {
	t, err := fn(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) Subtasks(c *gin.Context) {
	subs, err := h.app.Subtasks(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": subs})
}

type subtasksRequest struct {
	Items []tasks.SubtaskEdit `json:"items"`
}

// SaveSubtasks godoc
// @Summary      Replace the subtask list of a task
// @Description  Listed subtasks are renamed, unlisted ones go to the trash, lines without an id are created.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Parent task ID"
// @Param        body  body      subtasksRequest  true  "Edited list"
// @Success      200   {object}  map[string][]model.Task
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id}/subtasks [put]
func (h *Handler) SaveSubtasks(c *gin.Context) {
	var req subtasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	subs, err := h.app.SaveSubtasks(c.Param("id"), req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": subs})
}

type orderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *Handler) Reorder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.app.Reorder(req.IDs); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
