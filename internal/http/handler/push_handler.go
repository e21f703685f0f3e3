package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/store"
)

// GET /api/v1/push/key
func (h *Handler) PushKey(c *gin.Context) {
	if h.vapidPub == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.vapidPub})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// POST /api/v1/push/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription", "detail": err.Error()})
		return
	}
	sub := &store.PushSubscription{
		UserID:   userID(c),
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := h.repo.AddSubscription(c.Request.Context(), sub); err != nil {
		h.log.Error("add subscription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscribed": true})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// POST /api/v1/push/unsubscribe
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	if err := h.repo.DeleteSubscription(c.Request.Context(), userID(c), req.Endpoint); err != nil {
		h.log.Error("delete subscription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsubscribe failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}
