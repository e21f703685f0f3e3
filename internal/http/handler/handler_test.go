package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
	"github.com/Chris-Buzz/Daily-Planner/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.SQLiteRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "planner.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	h := New(repo, nil, nil, "", zap.NewNop())
	engine := gin.New()
	h.Register(engine)
	return engine, repo
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userIDHeader, user)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	engine, _ := newTestRouter(t)
	if w := doJSON(t, engine, http.MethodGet, "/api/v1/tasks", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing identity: got %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz should be public: got %d", w.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks", "u1",
		`{"title":"Gym","day":"Friday","start_time":"17:30","priority":"high"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	var created domain.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	// Other users cannot see or delete it.
	w = doJSON(t, engine, http.MethodGet, "/api/v1/tasks", "u2", "")
	if !strings.Contains(w.Body.String(), `"tasks":[]`) {
		t.Fatalf("cross-user listing leaked: %s", w.Body)
	}
	w = doJSON(t, engine, http.MethodDelete, "/api/v1/tasks/"+created.ID.String(), "u2", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-user delete: %d", w.Code)
	}

	// Update marks it completed.
	w = doJSON(t, engine, http.MethodPut, "/api/v1/tasks/"+created.ID.String(), "u1",
		`{"title":"Gym","completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/tasks/"+created.ID.String(), "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body)
	}
}

func TestTaskValidation(t *testing.T) {
	engine, _ := newTestRouter(t)

	if w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks", "u1", `{"description":"no title"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing title: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks", "u1",
		`{"title":"x","start_time":"25:00"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad start_time: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks", "u1",
		`{"title":"x","priority":"urgent"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad priority: %d", w.Code)
	}
}

func TestBulkDelete(t *testing.T) {
	engine, _ := newTestRouter(t)

	var ids []string
	for i := 0; i < 3; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks", "u1", `{"title":"t"}`)
		var created domain.Task
		if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, `"`+created.ID.String()+`"`)
	}

	w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks/bulk-delete", "u1",
		`{"ids":[`+strings.Join(ids, ",")+`]}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"deleted":3`) {
		t.Fatalf("bulk delete: %d %s", w.Code, w.Body)
	}
}

func TestTaskCleanup(t *testing.T) {
	engine, repo := newTestRouter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	oldDone := domain.Task{
		ID: uuid.New(), UserID: "u1", Title: "done weeks ago",
		Completed: true, CreatedAt: now.Add(-3 * 7 * 24 * time.Hour),
	}
	oldPending := domain.Task{
		ID: uuid.New(), UserID: "u1", Title: "still pending",
		CreatedAt: now.Add(-3 * 7 * 24 * time.Hour),
	}
	for _, task := range []domain.Task{oldDone, oldPending} {
		task := task
		if err := repo.CreateTask(ctx, &task); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	// Empty body uses the default two-week retention.
	w := doJSON(t, engine, http.MethodPost, "/api/v1/tasks/cleanup", "u1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"deleted":1`) {
		t.Fatalf("cleanup: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/v1/tasks", "u1", "")
	if !strings.Contains(w.Body.String(), "still pending") ||
		strings.Contains(w.Body.String(), "done weeks ago") {
		t.Fatalf("wrong survivors: %s", w.Body)
	}

	// Zero or negative retention is rejected.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/tasks/cleanup", "u1", `{"weeks":-1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative weeks accepted: %d", w.Code)
	}
}

func TestClassSchedule(t *testing.T) {
	engine, _ := newTestRouter(t)

	// Fresh user gets the empty default structure.
	w := doJSON(t, engine, http.MethodGet, "/api/v1/class-schedule", "u1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"semester"`) {
		t.Fatalf("default schedule: %d %s", w.Code, w.Body)
	}

	doc := `{"semester":{"name":"Fall 2026","startDate":"2026-09-01","endDate":"2026-12-18"},"breaks":[],"classes":[{"name":"Algorithms","day":"monday"}]}`
	w = doJSON(t, engine, http.MethodPost, "/api/v1/class-schedule", "u1", doc)
	if w.Code != http.StatusOK {
		t.Fatalf("save schedule: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/v1/class-schedule", "u1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Algorithms") {
		t.Fatalf("schedule round trip: %d %s", w.Code, w.Body)
	}

	// Another user still sees the default.
	w = doJSON(t, engine, http.MethodGet, "/api/v1/class-schedule", "u2", "")
	if strings.Contains(w.Body.String(), "Algorithms") {
		t.Fatalf("cross-user schedule leaked: %s", w.Body)
	}

	// Malformed JSON rejected.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/class-schedule", "u1", `{"broken`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed schedule accepted: %d", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	engine, _ := newTestRouter(t)

	// Fresh user gets defaults.
	w := doJSON(t, engine, http.MethodGet, "/api/v1/settings", "u1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "300") {
		t.Fatalf("fresh settings: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, engine, http.MethodPost, "/api/v1/settings", "u1",
		`{"notifications_enabled":true,"tz":"Europe/Berlin","reminder_offsets":[60,15],"channels":["email","push"],"email":"u1@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save settings: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/v1/settings", "u1", "")
	var p domain.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if !p.Enabled || p.TZ != "Europe/Berlin" || len(p.ReminderOffsets) != 2 || p.ReminderOffsets[0] != 60 {
		t.Fatalf("settings mismatch: %+v", p)
	}

	// Invalid timezone rejected.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/settings", "u1", `{"tz":"Mars/Olympus"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid tz accepted: %d", w.Code)
	}
}

func TestSettingsAutoInspirationDefaultsOn(t *testing.T) {
	engine, _ := newTestRouter(t)

	// A body that never mentions auto_inspiration keeps it on.
	w := doJSON(t, engine, http.MethodPost, "/api/v1/settings", "u1",
		`{"notifications_enabled":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save settings: %d %s", w.Code, w.Body)
	}
	w = doJSON(t, engine, http.MethodGet, "/api/v1/settings", "u1", "")
	var p domain.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if !p.AutoInspiration {
		t.Fatalf("omitted auto_inspiration stored as off")
	}

	// An explicit false sticks.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/settings", "u1",
		`{"notifications_enabled":true,"auto_inspiration":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save settings: %d %s", w.Code, w.Body)
	}
	w = doJSON(t, engine, http.MethodGet, "/api/v1/settings", "u1", "")
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if p.AutoInspiration {
		t.Fatalf("explicit auto_inspiration=false not stored")
	}
}

func TestPushEndpoints(t *testing.T) {
	engine, _ := newTestRouter(t)

	// No VAPID key configured.
	if w := doJSON(t, engine, http.MethodGet, "/api/v1/push/key", "u1", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("push key without config: %d", w.Code)
	}

	w := doJSON(t, engine, http.MethodPost, "/api/v1/push/subscribe", "u1",
		`{"endpoint":"https://push.example/abc","keys":{"p256dh":"k","auth":"a"}}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("subscribe: %d %s", w.Code, w.Body)
	}
	w = doJSON(t, engine, http.MethodPost, "/api/v1/push/unsubscribe", "u1",
		`{"endpoint":"https://push.example/abc"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unsubscribe: %d %s", w.Code, w.Body)
	}
}

func TestExtrasUnconfigured(t *testing.T) {
	engine, _ := newTestRouter(t)
	if w := doJSON(t, engine, http.MethodGet, "/api/v1/weather?city=Boston", "u1", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("weather without config: %d", w.Code)
	}
	if w := doJSON(t, engine, http.MethodGet, "/api/v1/suggestions", "u1", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("suggestions without config: %d", w.Code)
	}
}
