package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
	"github.com/Chris-Buzz/Daily-Planner/internal/ledger"
	"github.com/Chris-Buzz/Daily-Planner/internal/notify"
)

// Store is the slice of the repository the runner needs.
type Store interface {
	ListEnabledProfiles(ctx context.Context) ([]domain.Profile, error)
	ListIncompleteTasks(ctx context.Context, userID string) ([]domain.Task, error)
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
}

// Sender delivers a message to a user over their enabled channels and
// reports whether at least one delivery succeeded. notify.Dispatcher
// implements this.
type Sender interface {
	Send(ctx context.Context, p *domain.Profile, msg notify.Message) bool
}

// Runner executes the periodic notification passes: task reminders,
// preparation notices, the daily summary and sporadic inspiration.
type Runner struct {
	store     Store
	ledger    *ledger.Ledger
	eval      *domain.Evaluator
	sender    Sender
	log       *zap.Logger
	defaultTZ string

	now  func() time.Time // injectable for tests
	roll func() float64   // random roll for sporadic inspiration

	// passMu serializes passes. The ledger's read and mark are separate
	// calls; two concurrent passes could both see a key as unfired and
	// deliver twice, so a pass that outlives the check interval must
	// finish before the next one starts.
	passMu sync.Mutex
}

// NewRunner creates a Runner.
func NewRunner(store Store, led *ledger.Ledger, eval *domain.Evaluator, sender Sender, defaultTZ string, log *zap.Logger) *Runner {
	return &Runner{
		store:     store,
		ledger:    led,
		eval:      eval,
		sender:    sender,
		log:       log,
		defaultTZ: defaultTZ,
		now:       func() time.Time { return time.Now().UTC() },
		roll:      rand.Float64,
	}
}

// localNow converts the pass instant into the profile's timezone, falling
// back to the default zone on an invalid identifier.
func (r *Runner) localNow(p *domain.Profile, now time.Time) time.Time {
	loc, ok := domain.LoadZone(p.TZ, r.defaultTZ)
	if !ok && p.TZ != "" {
		r.log.Warn("invalid timezone, using fallback",
			zap.String("user_id", p.UserID),
			zap.String("tz", p.TZ),
			zap.String("fallback", r.defaultTZ))
	}
	return now.In(loc)
}

// CheckReminders is one reminder evaluation pass across all enabled users.
// Invoked periodically by the cron scheduler.
func (r *Runner) CheckReminders(ctx context.Context) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	now := r.now()
	r.ledger.BeginPass()
	r.ledger.PurgeExpired(ctx, now)

	profiles, err := r.store.ListEnabledProfiles(ctx)
	if err != nil {
		r.log.Error("list enabled profiles failed, skipping pass", zap.Error(err))
		return
	}
	for i := range profiles {
		r.checkUser(ctx, &profiles[i], now)
	}
}

// checkUser evaluates one user's incomplete tasks. A store failure skips
// this user only; other users' passes are unaffected.
func (r *Runner) checkUser(ctx context.Context, p *domain.Profile, now time.Time) {
	nowLocal := r.localNow(p, now)

	tasks, err := r.store.ListIncompleteTasks(ctx, p.UserID)
	if err != nil {
		r.log.Error("task store unavailable, skipping user pass",
			zap.String("user_id", p.UserID), zap.Error(err))
		return
	}

	r.prepNotices(ctx, p, tasks, nowLocal, now)

	for i := range tasks {
		task := &tasks[i]
		m, ok := r.eval.Evaluate(task, p, nowLocal)
		if !ok {
			continue
		}
		r.log.Info("reminder matched",
			zap.String("user_id", p.UserID),
			zap.String("task_id", task.ID.String()),
			zap.Int("offset_min", m.Offset),
			zap.Bool("imminent", m.Imminent),
			zap.String("tier", string(m.Tier)),
			zap.Float64("delta_min", m.DeltaMin))

		if r.ledger.HasFired(ctx, m.Key, now) {
			r.log.Info("reminder suppressed by dedup ledger",
				zap.String("user_id", p.UserID),
				zap.String("key", m.Key))
			continue
		}
		if r.sender.Send(ctx, p, notify.ReminderMessage(task, m)) {
			r.ledger.MarkFired(ctx, m.Key, now)
		}
		// Failed delivery leaves the key unmarked; the next pass retries.
	}
}

// Preparation notice windows, minutes since local midnight. Each fires when
// the pass lands within +/-2 minutes of the half hour, matching a 5-minute
// check cadence.
var prepWindows = []struct {
	kind             string
	hour             int
	fromHour, toHour int // tasks counted for this part of the day
}{
	{"morning_prep", 7, 0, 12},
	{"midday_prep", 12, 12, 17},
	{"evening_prep", 17, 17, 24},
}

func (r *Runner) prepNotices(ctx context.Context, p *domain.Profile, tasks []domain.Task, nowLocal, now time.Time) {
	for _, w := range prepWindows {
		if nowLocal.Hour() != w.hour || nowLocal.Minute() < 28 || nowLocal.Minute() > 32 {
			continue
		}
		count := 0
		for i := range tasks {
			if !tasks[i].IsForDay(nowLocal) || tasks[i].StartTime == "" {
				continue
			}
			startM, err := domain.ParseClock(tasks[i].StartTime)
			if err != nil {
				continue
			}
			if h := startM / 60; h >= w.fromHour && h < w.toHour {
				count++
			}
		}
		if count == 0 {
			continue
		}
		key := domain.HourlyKey(p.UserID, w.kind, nowLocal.Format("2006-01-02"), nowLocal.Hour())
		if r.ledger.HasFired(ctx, key, now) {
			continue
		}
		if r.sender.Send(ctx, p, notify.PrepMessage(w.kind, count)) {
			r.ledger.MarkFired(ctx, key, now)
		}
	}
}

// DailySummary sends each opted-in user a recap of today's tasks. Fired
// once a day by cron; the per-day dedup key keeps retries idempotent.
func (r *Runner) DailySummary(ctx context.Context) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	now := r.now()
	r.ledger.BeginPass()

	profiles, err := r.store.ListEnabledProfiles(ctx)
	if err != nil {
		r.log.Error("list enabled profiles failed, skipping summaries", zap.Error(err))
		return
	}
	for i := range profiles {
		p := &profiles[i]
		if !p.DailySummary {
			continue
		}
		nowLocal := r.localNow(p, now)
		key := domain.DailyKey(p.UserID, "daily_summary", nowLocal.Format("2006-01-02"))
		if r.ledger.HasFired(ctx, key, now) {
			continue
		}

		tasks, err := r.store.ListTasks(ctx, p.UserID)
		if err != nil {
			r.log.Error("task store unavailable, skipping summary",
				zap.String("user_id", p.UserID), zap.Error(err))
			continue
		}
		var completed, pending []domain.Task
		for _, t := range tasks {
			if !t.IsForDay(nowLocal) {
				continue
			}
			if t.Completed {
				completed = append(completed, t)
			} else {
				pending = append(pending, t)
			}
		}
		if r.sender.Send(ctx, p, notify.SummaryMessage(completed, pending)) {
			r.ledger.MarkFired(ctx, key, now)
		}
	}
}

// Inspiration sends a sporadic motivational note to users who opted in.
// Fires for busy days, low completion rates, or a small random roll.
func (r *Runner) Inspiration(ctx context.Context) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	now := r.now()
	r.ledger.BeginPass()

	profiles, err := r.store.ListEnabledProfiles(ctx)
	if err != nil {
		r.log.Error("list enabled profiles failed, skipping inspiration", zap.Error(err))
		return
	}
	for i := range profiles {
		p := &profiles[i]
		if !p.AutoInspiration {
			continue
		}
		nowLocal := r.localNow(p, now)

		tasks, err := r.store.ListTasks(ctx, p.UserID)
		if err != nil {
			r.log.Error("task store unavailable, skipping inspiration",
				zap.String("user_id", p.UserID), zap.Error(err))
			continue
		}
		total, completed := 0, 0
		for _, t := range tasks {
			if !t.IsForDay(nowLocal) {
				continue
			}
			total++
			if t.Completed {
				completed++
			}
		}
		rate := 100.0
		if total > 0 {
			rate = float64(completed) / float64(total) * 100
		}
		if total < 5 && !(total > 0 && rate < 50) && r.roll() >= 0.1 {
			continue
		}

		key := domain.DailyKey(p.UserID, "inspiration", nowLocal.Format("2006-01-02"))
		if r.ledger.HasFired(ctx, key, now) {
			continue
		}
		if r.sender.Send(ctx, p, notify.InspirationMessage(total)) {
			r.ledger.MarkFired(ctx, key, now)
		}
	}
}
