package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/suggest"
	"github.com/Chris-Buzz/Daily-Planner/internal/weather"
)

// GET /api/v1/weather?city=... | ?lat=..&lon=..
func (h *Handler) Weather(c *gin.Context) {
	if h.weather == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather not configured"})
		return
	}
	ctx := c.Request.Context()

	if city := c.Query("city"); city != "" {
		rep, err := h.weather.ByCity(ctx, city)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, rep)
		case errors.Is(err, weather.ErrCityNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "city not found"})
		default:
			h.log.Error("weather lookup failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "weather lookup failed"})
		}
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city or lat/lon required"})
		return
	}
	rep, err := h.weather.ByCoordinates(ctx, lat, lon)
	if err != nil {
		h.log.Error("weather lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GET /api/v1/suggestions
func (h *Handler) Suggestions(c *gin.Context) {
	if h.suggest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "suggestions not configured"})
		return
	}
	tasks, err := h.repo.ListIncompleteTasks(c.Request.Context(), userID(c))
	if err != nil {
		h.log.Error("list tasks failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tasks failed"})
		return
	}
	advice, err := h.suggest.ForTasks(c.Request.Context(), tasks)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"advice": advice})
	case errors.Is(err, suggest.ErrNoTasks):
		c.JSON(http.StatusOK, gin.H{"advice": "Nothing scheduled. Great day to plan ahead!"})
	default:
		h.log.Error("suggestion failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "suggestion failed"})
	}
}
