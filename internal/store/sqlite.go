package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Tasks ---

func (r *SQLiteRepo) CreateTask(ctx context.Context, t *domain.Task) error {
	if t == nil {
		return errors.New("nil task")
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, day, start_time, priority, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID, t.Title, t.Description, strings.ToLower(t.Day), t.StartTime,
		domain.NormalizePriority(t.Priority), boolToInt(t.Completed),
		t.CreatedAt.Unix(), t.UpdatedAt.Unix(),
	)
	return err
}

const taskColumns = `id, user_id, title, description, day, start_time, priority, completed, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var (
		id           string
		t            domain.Task
		completedInt int
		createdAt    int64
		updatedAt    int64
	)
	if err := row.Scan(&id, &t.UserID, &t.Title, &t.Description, &t.Day, &t.StartTime,
		&t.Priority, &completedInt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt task id %q: %w", id, err)
	}
	t.ID = parsed
	t.Completed = completedInt != 0
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &t, nil
}

func (r *SQLiteRepo) GetTask(ctx context.Context, userID string, id uuid.UUID) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *SQLiteRepo) listTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (r *SQLiteRepo) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.listTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at`, userID)
}

func (r *SQLiteRepo) ListIncompleteTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.listTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND completed = 0 ORDER BY created_at`, userID)
}

func (r *SQLiteRepo) UpdateTask(ctx context.Context, t *domain.Task) error {
	if t == nil {
		return errors.New("nil task")
	}
	t.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, day = ?, start_time = ?, priority = ?, completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, strings.ToLower(t.Day), t.StartTime,
		domain.NormalizePriority(t.Priority), boolToInt(t.Completed), t.UpdatedAt.Unix(),
		t.ID.String(), t.UserID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id.String(), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteTasks(ctx context.Context, userID string, ids []uuid.UUID) (int, error) {
	deleted := 0
	for _, id := range ids {
		switch err := r.DeleteTask(ctx, userID, id); {
		case err == nil:
			deleted++
		case errors.Is(err, ErrNotFound):
			// already gone; bulk delete is best-effort
		default:
			return deleted, err
		}
	}
	return deleted, nil
}

// DeleteCompletedTasksBefore removes the user's completed tasks created
// before the cutoff and reports how many were deleted. Incomplete tasks
// are kept regardless of age.
func (r *SQLiteRepo) DeleteCompletedTasksBefore(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND completed = 1 AND created_at < ?`,
		userID, cutoff.UTC().Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// --- Class schedules ---

func (r *SQLiteRepo) GetClassSchedule(ctx context.Context, userID string) (json.RawMessage, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM class_schedules WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

func (r *SQLiteRepo) SaveClassSchedule(ctx context.Context, userID string, schedule json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO class_schedules (user_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		userID, string(schedule), time.Now().UTC().Unix(),
	)
	return err
}

// --- Profiles ---

func (r *SQLiteRepo) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	created := p.CreatedAt.UTC().Unix()
	if p.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, email, telegram_chat_id, tz, enabled,
			reminder_offsets, channels, daily_summary, auto_inspiration, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email            = excluded.email,
			telegram_chat_id = excluded.telegram_chat_id,
			tz               = excluded.tz,
			enabled          = excluded.enabled,
			reminder_offsets = excluded.reminder_offsets,
			channels         = excluded.channels,
			daily_summary    = excluded.daily_summary,
			auto_inspiration = excluded.auto_inspiration`,
		p.UserID, p.Email, p.TelegramChatID, p.TZ, boolToInt(p.Enabled),
		intsToCSV(p.ReminderOffsets), stringsToCSV(p.Channels),
		boolToInt(p.DailySummary), boolToInt(p.AutoInspiration), created,
	)
	return err
}

const profileColumns = `user_id, email, telegram_chat_id, tz, enabled, reminder_offsets, channels, daily_summary, auto_inspiration, created_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	var (
		p              domain.Profile
		enabledInt     int
		offsetsCSV     string
		channelsCSV    string
		summaryInt     int
		inspirationInt int
		createdAt      int64
	)
	if err := row.Scan(&p.UserID, &p.Email, &p.TelegramChatID, &p.TZ, &enabledInt,
		&offsetsCSV, &channelsCSV, &summaryInt, &inspirationInt, &createdAt); err != nil {
		return nil, err
	}
	p.Enabled = enabledInt != 0
	p.ReminderOffsets = csvToInts(offsetsCSV)
	p.Channels = csvToStrings(channelsCSV)
	p.DailySummary = summaryInt != 0
	p.AutoInspiration = inspirationInt != 0
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM users WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *SQLiteRepo) ListEnabledProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM users WHERE enabled = 1 ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, rows.Err()
}

// --- Push subscriptions ---

func (r *SQLiteRepo) AddSubscription(ctx context.Context, s *PushSubscription) error {
	if s == nil {
		return errors.New("nil subscription")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, endpoint) DO UPDATE SET
			p256dh = excluded.p256dh,
			auth   = excluded.auth`,
		s.UserID, s.Endpoint, s.P256dh, s.Auth, s.CreatedAt.Unix(),
	)
	return err
}

func (r *SQLiteRepo) ListSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []PushSubscription
	for rows.Next() {
		var (
			s         PushSubscription
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &createdAt); err != nil {
			return nil, err
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *SQLiteRepo) DeleteSubscription(ctx context.Context, userID, endpoint string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE user_id = ? AND endpoint = ?`, userID, endpoint)
	return err
}

// --- Persisted ledger ---

func (r *SQLiteRepo) GetSent(ctx context.Context, key string) (time.Time, bool, error) {
	var sentAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT sent_at FROM sent_notifications WHERE key = ?`, key).Scan(&sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(sentAt, 0).UTC(), true, nil
}

func (r *SQLiteRepo) PutSent(ctx context.Context, key string, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sent_notifications (key, sent_at) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET sent_at = excluded.sent_at`,
		key, sentAt.UTC().Unix(),
	)
	return err
}

func (r *SQLiteRepo) DeleteSent(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sent_notifications WHERE key = ?`, key)
	return err
}

func (r *SQLiteRepo) ListSentOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key FROM sent_notifications
		WHERE sent_at < ?
		ORDER BY sent_at
		LIMIT ?`,
		cutoff.UTC().Unix(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
