package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/config"
	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
	"github.com/Chris-Buzz/Daily-Planner/internal/http/handler"
	"github.com/Chris-Buzz/Daily-Planner/internal/ledger"
	"github.com/Chris-Buzz/Daily-Planner/internal/notify"
	"github.com/Chris-Buzz/Daily-Planner/internal/scheduler"
	"github.com/Chris-Buzz/Daily-Planner/internal/store"
	"github.com/Chris-Buzz/Daily-Planner/internal/suggest"
	"github.com/Chris-Buzz/Daily-Planner/internal/weather"
)

// App owns the process lifecycle: storage, HTTP API and the notification
// scheduler.
type App struct {
	cfg config.Config
	log *zap.Logger
}

// New creates the application shell.
func New(cfg config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Run starts everything and blocks until the context is canceled or a
// shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting daily-planner",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Int("check_interval_min", a.cfg.CheckIntervalMin),
		zap.Float64("tolerance_min", a.cfg.ToleranceMin),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath, a.log)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	defer func() { _ = repo.Close() }()
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	// Delivery channels. Channels without configuration are not registered;
	// the dispatcher simply never attempts them.
	var channels []notify.Channel
	if a.cfg.SMTPHost != "" {
		channels = append(channels, notify.NewEmailChannel(
			a.cfg.SMTPHost, a.cfg.SMTPPort, a.cfg.SMTPUser, a.cfg.SMTPPass, a.cfg.SMTPFrom))
	}
	if a.cfg.VAPIDPublicKey != "" && a.cfg.VAPIDPrivateKey != "" {
		channels = append(channels, notify.NewPushChannel(
			repo, a.cfg.VAPIDPublicKey, a.cfg.VAPIDPrivateKey, a.cfg.VAPIDSubject))
	}
	if a.cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramChannel(a.cfg.TelegramToken)
		if err != nil {
			a.log.Warn("telegram channel unavailable", zap.Error(err))
		} else {
			channels = append(channels, tg)
		}
	}
	if len(channels) == 0 {
		a.log.Warn("no delivery channels configured, reminders will be evaluated but not sent")
	}
	dispatcher := notify.NewDispatcher(a.log, channels...)

	led := ledger.New(repo, a.log)
	eval := domain.NewEvaluator(a.cfg.ToleranceMin, a.log)
	runner := scheduler.NewRunner(repo, led, eval, dispatcher, a.cfg.DefaultTZ, a.log)
	sched, err := scheduler.New(runner, a.cfg.CheckIntervalMin, a.log)
	if err != nil {
		return err
	}

	var weatherClient *weather.Client
	if a.cfg.WeatherKey != "" {
		weatherClient = weather.NewClient(a.cfg.WeatherKey)
	}
	var suggestSvc *suggest.Service
	if a.cfg.OpenAIKey != "" {
		suggestSvc = suggest.New(a.cfg.OpenAIKey)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	h := handler.New(repo, weatherClient, suggestSvc, a.cfg.VAPIDPublicKey, a.log)
	h.Register(engine)

	srv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	sched.Start()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	a.log.Info("shutdown signal received")

	sched.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	return nil
}
