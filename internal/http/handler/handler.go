// Package handler exposes the planner's REST API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/store"
	"github.com/Chris-Buzz/Daily-Planner/internal/suggest"
	"github.com/Chris-Buzz/Daily-Planner/internal/weather"
)

// Handler bundles the API's collaborators.
type Handler struct {
	repo     store.Repo
	weather  *weather.Client
	suggest  *suggest.Service
	vapidPub string
	log      *zap.Logger
}

// New creates a Handler. weather and suggest may be nil when the respective
// API keys are not configured; their endpoints then answer 503.
func New(repo store.Repo, w *weather.Client, s *suggest.Service, vapidPub string, log *zap.Logger) *Handler {
	return &Handler{repo: repo, weather: w, suggest: s, vapidPub: vapidPub, log: log}
}

// userIDHeader carries the authenticated user identity, established by the
// auth proxy in front of this service.
const userIDHeader = "X-User-ID"

// RequireUser rejects requests without a user identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(userIDHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetHeader(userIDHeader)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}

// Register mounts all routes on the engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.Healthz)

	api := engine.Group("/api/v1", RequireUser())
	{
		api.POST("/tasks", h.CreateTask)
		api.GET("/tasks", h.ListTasks)
		api.PUT("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)
		api.POST("/tasks/bulk-delete", h.BulkDeleteTasks)
		api.POST("/tasks/cleanup", h.CleanupTasks)

		api.GET("/class-schedule", h.GetClassSchedule)
		api.POST("/class-schedule", h.SaveClassSchedule)

		api.GET("/settings", h.GetSettings)
		api.POST("/settings", h.SaveSettings)

		api.GET("/push/key", h.PushKey)
		api.POST("/push/subscribe", h.Subscribe)
		api.POST("/push/unsubscribe", h.Unsubscribe)

		api.GET("/weather", h.Weather)
		api.GET("/suggestions", h.Suggestions)
	}
}
