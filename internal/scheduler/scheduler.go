package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives the Runner's jobs on a cron schedule: reminders every
// check interval, the daily summary in the evening, and inspiration at a
// few fixed times through the day.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// inspirationTimes spreads sporadic inspiration over the day.
var inspirationTimes = []string{
	"30 9 * * *",
	"45 11 * * *",
	"20 14 * * *",
	"10 16 * * *",
	"35 18 * * *",
}

// cronLogger adapts zap to cron's logger so skipped runs show up in the
// structured log.
type cronLogger struct{ log *zap.SugaredLogger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Infow(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Errorw(msg, append(kv, "error", err)...)
}

// New wires the runner's jobs into a cron instance. intervalMin is the
// reminder check cadence in minutes. A job that outlives its interval is
// not started again; the runner's own pass lock makes overlap harmless,
// skipping just keeps slow passes from queueing up.
func New(runner *Runner, intervalMin int, log *zap.Logger) (*Scheduler, error) {
	if intervalMin <= 0 {
		intervalMin = 5
	}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{log: log.Sugar()}),
	))
	ctx := context.Background()

	if _, err := c.AddFunc(fmt.Sprintf("*/%d * * * *", intervalMin), func() {
		runner.CheckReminders(ctx)
	}); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc("0 20 * * *", func() {
		runner.DailySummary(ctx)
	}); err != nil {
		return nil, err
	}
	for _, at := range inspirationTimes {
		if _, err := c.AddFunc(at, func() {
			runner.Inspiration(ctx)
		}); err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("scheduler starting")
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}
