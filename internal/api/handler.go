package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yakshaver/go-tide-times/internal/catalog"
	"github.com/yakshaver/go-tide-times/internal/schedule"
)

// ScheduleBuilder runs one schedule pipeline pass.
type ScheduleBuilder interface {
	Build(ctx context.Context, stationID string, days int) schedule.Schedule
}

type Handler struct {
	builder ScheduleBuilder
}

func NewHandler(builder ScheduleBuilder) *Handler {
	return &Handler{builder: builder}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/schedule", h.getSchedule)
	r.GET("/api/stations", h.getStations)
	r.GET("/health", h.health)
}

func (h *Handler) getSchedule(c *gin.Context) {
	stationID := c.Query("station")

	days := 0
	if d := c.Query("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 && n <= 31 {
			days = n
		}
	}

	s := h.builder.Build(c.Request.Context(), stationID, days)

	if s.InitError != "" {
		c.JSON(http.StatusServiceUnavailable, s)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) getStations(c *gin.Context) {
	stations := catalog.Stations()

	type stationInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	out := make([]stationInfo, 0, len(stations))
	for _, s := range stations {
		out = append(out, stationInfo{ID: s.ID, Name: s.Name})
	}

	c.JSON(http.StatusOK, gin.H{"stations": out})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
