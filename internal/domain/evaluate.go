package domain

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Severity tiers, derived from how far ahead of the task a reminder fires.
type Tier string

const (
	TierNextDay  Tier = "next-day"
	TierHours    Tier = "hours"
	TierSoon     Tier = "soon"
	TierImminent Tier = "imminent"
	TierCritical Tier = "critical" // imminent-start override only
)

// imminentWindowMin is the unconditional-match window: a task starting within
// this many minutes always fires, regardless of configured offsets.
const imminentWindowMin = 2.0

// defaultTolerance guards against a zero-valued Evaluator. Tuned against a
// 5-minute check interval; see config.ToleranceMin.
const defaultTolerance = 5.0

// priorityOffsets are the fallback reminder offsets used only when the user
// has no explicit offsets configured. High priority intentionally gets two.
var priorityOffsets = map[string][]int{
	PriorityHigh:   {30, 10},
	PriorityMedium: {15},
	PriorityLow:    {10},
}

// Match describes a reminder that should fire now.
type Match struct {
	Offset   int     // triggering offset in minutes; meaningless when Imminent
	Imminent bool    // matched via the imminent-start override
	Tier     Tier
	DeltaMin float64 // minutes until task start, fractional
	Key      string  // dedup key for this reminder on this date
}

// Evaluator decides whether a reminder should fire for a task at a given
// local instant. It is stateless; deduplication lives in the ledger.
type Evaluator struct {
	tolerance float64
	log       *zap.Logger
}

// NewEvaluator creates an Evaluator with the given tolerance window in
// minutes. Non-positive tolerance falls back to the default.
func NewEvaluator(toleranceMin float64, log *zap.Logger) *Evaluator {
	if toleranceMin <= 0 {
		toleranceMin = defaultTolerance
	}
	return &Evaluator{tolerance: toleranceMin, log: log}
}

// Evaluate returns a Match and true when a reminder should fire for the task
// right now. nowLocal must already be in the user's timezone. A task with no
// start time, a completed task, or a task scheduled for another day never
// matches. A malformed start time is logged and skipped, never fatal.
func (e *Evaluator) Evaluate(task *Task, p *Profile, nowLocal time.Time) (Match, bool) {
	if task == nil || p == nil || !p.Enabled || task.Completed || task.StartTime == "" {
		return Match{}, false
	}
	if !task.IsForDay(nowLocal) {
		return Match{}, false
	}

	startM, err := ParseClock(task.StartTime)
	if err != nil {
		if e.log != nil {
			e.log.Warn("unparseable task time, skipping",
				zap.String("task_id", task.ID.String()),
				zap.String("start_time", task.StartTime),
				zap.Error(err))
		}
		return Match{}, false
	}

	taskAt := ClockAt(nowLocal, startM)
	delta := taskAt.Sub(nowLocal).Minutes()
	date := nowLocal.Format("2006-01-02")

	// Imminent-start override: always fires, always critical.
	if delta >= 0 && delta <= imminentWindowMin {
		return Match{
			Imminent: true,
			Tier:     TierCritical,
			DeltaMin: delta,
			Key:      ImminentKey(p.UserID, task.ID.String(), date),
		}, true
	}
	if delta < 0 {
		return Match{}, false
	}

	// Explicit offsets win over priority defaults; iteration order is the
	// configured order, first match wins.
	offsets := p.ReminderOffsets
	if len(offsets) == 0 {
		offsets = priorityOffsets[NormalizePriority(task.Priority)]
	}
	for _, o := range offsets {
		if delta >= float64(o)-e.tolerance && delta <= float64(o)+e.tolerance {
			return Match{
				Offset:   o,
				Tier:     tierFor(o),
				DeltaMin: delta,
				Key:      ReminderKey(p.UserID, task.ID.String(), o, date),
			}, true
		}
	}
	return Match{}, false
}

func tierFor(offset int) Tier {
	switch {
	case offset >= 1440:
		return TierNextDay
	case offset >= 60:
		return TierHours
	case offset >= 15:
		return TierSoon
	default:
		return TierImminent
	}
}

// ReminderKey identifies one reminder offset for one task on one date.
func ReminderKey(userID, taskID string, offset int, date string) string {
	return fmt.Sprintf("%s_%s_%d_%s", userID, taskID, offset, date)
}

// ImminentKey is the dedup key for an imminent-start match; the offset
// component is the "now" sentinel so it never collides with a configured one.
func ImminentKey(userID, taskID, date string) string {
	return fmt.Sprintf("%s_%s_now_%s", userID, taskID, date)
}

// DailyKey identifies a once-per-day notification type (daily summary,
// inspiration) for one user on one date.
func DailyKey(userID, kind, date string) string {
	return fmt.Sprintf("%s_%s_%s", userID, kind, date)
}

// HourlyKey identifies an at-most-hourly notification type (preparation
// notices) for one user on one date and hour.
func HourlyKey(userID, kind, date string, hour int) string {
	return fmt.Sprintf("%s_%s_%s_%02d", userID, kind, date, hour)
}
