package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
	"github.com/Chris-Buzz/Daily-Planner/internal/store"
)

type settingsRequest struct {
	Email           string   `json:"email"`
	TelegramChatID  int64    `json:"telegram_chat_id"`
	TZ              string   `json:"tz"`
	Enabled         bool     `json:"notifications_enabled"`
	ReminderOffsets []int    `json:"reminder_offsets" binding:"omitempty,dive,gt=0"`
	Channels        []string `json:"channels" binding:"omitempty,dive,oneof=email push telegram"`
	DailySummary    bool     `json:"daily_summary"`
	AutoInspiration *bool    `json:"auto_inspiration"` // defaults to on when omitted
}

// GET /api/v1/settings
func (h *Handler) GetSettings(c *gin.Context) {
	p, err := h.repo.GetProfile(c.Request.Context(), userID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, store.ErrNotFound):
		// Fresh user: answer the defaults the scheduler would apply.
		c.JSON(http.StatusOK, domain.Profile{
			UserID:          userID(c),
			ReminderOffsets: domain.DefaultOffsets,
			AutoInspiration: true,
		})
	default:
		h.log.Error("get settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get settings failed"})
	}
}

// POST /api/v1/settings
func (h *Handler) SaveSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	if req.TZ != "" {
		if _, err := time.LoadLocation(req.TZ); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone", "detail": req.TZ})
			return
		}
	}

	autoInspiration := true
	if req.AutoInspiration != nil {
		autoInspiration = *req.AutoInspiration
	}

	p := &domain.Profile{
		UserID:          userID(c),
		Email:           req.Email,
		TelegramChatID:  req.TelegramChatID,
		TZ:              req.TZ,
		Enabled:         req.Enabled,
		ReminderOffsets: req.ReminderOffsets,
		Channels:        req.Channels,
		DailySummary:    req.DailySummary,
		AutoInspiration: autoInspiration,
	}
	if err := h.repo.UpsertProfile(c.Request.Context(), p); err != nil {
		h.log.Error("save settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save settings failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}
