package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
	"github.com/Chris-Buzz/Daily-Planner/internal/store"
)

type taskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	Priority    string `json:"priority" binding:"omitempty,oneof=high medium low"`
	Completed   bool   `json:"completed"`
}

// POST /api/v1/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	if req.StartTime != "" {
		if _, err := domain.ParseClock(req.StartTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be HH:MM"})
			return
		}
	}

	task := &domain.Task{
		ID:          uuid.New(),
		UserID:      userID(c),
		Title:       req.Title,
		Description: req.Description,
		Day:         req.Day,
		StartTime:   req.StartTime,
		Priority:    domain.NormalizePriority(req.Priority),
		Completed:   req.Completed,
	}
	if err := h.repo.CreateTask(c.Request.Context(), task); err != nil {
		h.log.Error("create task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create task failed"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GET /api/v1/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.repo.ListTasks(c.Request.Context(), userID(c))
	if err != nil {
		h.log.Error("list tasks failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tasks failed"})
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// PUT /api/v1/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	if req.StartTime != "" {
		if _, err := domain.ParseClock(req.StartTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be HH:MM"})
			return
		}
	}

	task := &domain.Task{
		ID:          id,
		UserID:      userID(c),
		Title:       req.Title,
		Description: req.Description,
		Day:         req.Day,
		StartTime:   req.StartTime,
		Priority:    domain.NormalizePriority(req.Priority),
		Completed:   req.Completed,
	}
	switch err := h.repo.UpdateTask(c.Request.Context(), task); {
	case err == nil:
		c.JSON(http.StatusOK, task)
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		h.log.Error("update task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update task failed"})
	}
}

// DELETE /api/v1/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	switch err := h.repo.DeleteTask(c.Request.Context(), userID(c), id); {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		h.log.Error("delete task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete task failed"})
	}
}

type cleanupRequest struct {
	Weeks int `json:"weeks" binding:"omitempty,gt=0"`
}

// POST /api/v1/tasks/cleanup
//
// Deletes the user's completed tasks created more than N weeks ago
// (default 2). Incomplete tasks are never touched.
func (h *Handler) CleanupTasks(c *gin.Context) {
	req := cleanupRequest{Weeks: 2}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}
		if req.Weeks == 0 {
			req.Weeks = 2
		}
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -7*req.Weeks)
	deleted, err := h.repo.DeleteCompletedTasksBefore(c.Request.Context(), userID(c), cutoff)
	if err != nil {
		h.log.Error("task cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// POST /api/v1/tasks/bulk-delete
func (h *Handler) BulkDeleteTasks(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, s := range req.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id", "detail": s})
			return
		}
		ids = append(ids, id)
	}
	deleted, err := h.repo.DeleteTasks(c.Request.Context(), userID(c), ids)
	if err != nil {
		h.log.Error("bulk delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk delete failed", "deleted": deleted})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
