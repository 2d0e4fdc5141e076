package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
)

// parseDay reads an optional YYYY-MM-DD query parameter. It writes a 400
// and returns ok=false on a malformed value.
func parseDay(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", name, raw))
		return nil, false
	}
	return &day, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return n, true
}

// View godoc
// @Summary      Grouped task list for the current sort, filter and reference day
// @Tags         view
// @Produce      json
// @Success      200  {object}  view.View
// @Router       /view [get]
func (h *Handler) View(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.View())
}

func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.State())
}

// Gauge godoc
// @Summary      Time gauge for one day
// @Tags         view
// @Produce      json
// @Param        date  query     string  false  "YYYY-MM-DD"
// @Success      200   {object}  gauge.Result
// @Failure      400   {object}  map[string]string
// @Router       /gauge [get]
func (h *Handler) Gauge(c *gin.Context) {
	day, ok := parseDay(c, "date")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.app.Gauge(day))
}

// Week godoc
// @Summary      Consecutive gauges with day-crossing carry
// @Tags         view
// @Produce      json
// @Param        from  query     string  false  "YYYY-MM-DD"
// @Param        days  query     int     false  "number of days, default 7"
// @Success      200   {array}   gauge.Result
// @Router       /gauge/week [get]
func (h *Handler) Week(c *gin.Context) {
	from, ok := parseDay(c, "from")
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": h.app.Week(from, days)})
}

// Calendar godoc
// @Summary      Month grid with per-day task counts
// @Tags         view
// @Produce      json
// @Param        year   query     int  false  "year"
// @Param        month  query     int  false  "month 1-12"
// @Success      200    {object}  calendar.Month
// @Router       /calendar [get]
func (h *Handler) Calendar(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}
	if month < 0 || month > 12 {
		badRequest(c, fmt.Errorf("month %d out of range", month))
		return
	}
	c.JSON(http.StatusOK, h.app.Calendar(year, time.Month(month)))
}

func (h *Handler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Analytics())
}

// Pull godoc
// @Summary      Replace local records with the mirror's copies
// @Tags         sync
// @Produce      json
// @Success      200  {object}  map[string]int
// @Failure      502  {object}  map[string]string
// @Router       /sync/pull [post]
func (h *Handler) Pull(c *gin.Context) {
	n, err := h.app.Pull(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "pulled": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pulled": n})
}

type sortRequest struct {
	Sort model.SortMode `json:"sort" binding:"required"`
}

func (h *Handler) SetSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.app.SetSort(req.Sort); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.State())
}

type filterRequest struct {
	Filter model.Filter `json:"filter"`
}

func (h *Handler) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.app.SetFilter(req.Filter); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.State())
}

type referenceRequest struct {
	// Date is YYYY-MM-DD; empty returns to today.
	Date string `json:"date"`
}

func (h *Handler) SetReference(c *gin.Context) {
	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Date == "" {
		h.app.SetReference(nil)
		c.JSON(http.StatusOK, h.app.State())
		return
	}
	day, err := time.ParseInLocation(time.DateOnly, req.Date, time.Local)
	if err != nil {
		fail(c, fmt.Errorf("%w: date %q, want YYYY-MM-DD", tasks.ErrInvalid, req.Date))
		return
	}
	h.app.SetReference(&day)
	c.JSON(http.StatusOK, h.app.State())
}

type editingRequest struct {
	ID string `json:"id"`
}

func (h *Handler) SetEditing(c *gin.Context) {
	var req editingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.app.SetEditing(req.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.State())
}
