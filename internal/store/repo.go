package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

// Repo defines storage operations for tasks, profiles, push subscriptions
// and the persisted notification ledger.
type Repo interface {
	// Tasks.
	CreateTask(ctx context.Context, t *domain.Task) error
	GetTask(ctx context.Context, userID string, id uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	ListIncompleteTasks(ctx context.Context, userID string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, t *domain.Task) error
	DeleteTask(ctx context.Context, userID string, id uuid.UUID) error
	DeleteTasks(ctx context.Context, userID string, ids []uuid.UUID) (int, error)
	DeleteCompletedTasksBefore(ctx context.Context, userID string, cutoff time.Time) (int, error)

	// Notification profiles.
	UpsertProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	ListEnabledProfiles(ctx context.Context) ([]domain.Profile, error)

	// Class schedule, stored as an opaque JSON document per user.
	GetClassSchedule(ctx context.Context, userID string) (json.RawMessage, error)
	SaveClassSchedule(ctx context.Context, userID string, schedule json.RawMessage) error

	// Web push subscriptions.
	AddSubscription(ctx context.Context, s *PushSubscription) error
	ListSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error)
	DeleteSubscription(ctx context.Context, userID, endpoint string) error

	// Persisted ledger (satisfies ledger.Store).
	GetSent(ctx context.Context, key string) (time.Time, bool, error)
	PutSent(ctx context.Context, key string, sentAt time.Time) error
	DeleteSent(ctx context.Context, key string) error
	ListSentOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]string, error)

	Close() error
}

// PushSubscription is one browser's web-push registration.
type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
