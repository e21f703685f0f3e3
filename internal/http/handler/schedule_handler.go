package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/store"
)

// defaultClassSchedule is answered to users who have not saved one yet.
var defaultClassSchedule = json.RawMessage(`{
	"semester": {"name": "", "startDate": "", "endDate": ""},
	"breaks": [],
	"classes": []
}`)

// GET /api/v1/class-schedule
func (h *Handler) GetClassSchedule(c *gin.Context) {
	schedule, err := h.repo.GetClassSchedule(c.Request.Context(), userID(c))
	switch {
	case err == nil:
		c.Data(http.StatusOK, "application/json", schedule)
	case errors.Is(err, store.ErrNotFound):
		c.Data(http.StatusOK, "application/json", defaultClassSchedule)
	default:
		h.log.Error("get class schedule failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get class schedule failed"})
	}
}

// POST /api/v1/class-schedule
//
// The schedule is stored as the client sent it; the server only checks
// that the body is a JSON document.
func (h *Handler) SaveClassSchedule(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(body) == 0 || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schedule must be a JSON document"})
		return
	}
	if err := h.repo.SaveClassSchedule(c.Request.Context(), userID(c), body); err != nil {
		h.log.Error("save class schedule failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save class schedule failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}
