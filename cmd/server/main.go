package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadrelay/backend/internal/app"
	"github.com/leadrelay/backend/internal/config"
	"github.com/leadrelay/backend/internal/logging"
	"github.com/leadrelay/backend/internal/metrics"
	"github.com/leadrelay/backend/internal/repository"
	"github.com/leadrelay/backend/internal/service"
	"github.com/leadrelay/backend/internal/telemetry"
	"github.com/leadrelay/backend/pkg/sms"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $CONFIG_FILE)")
	flag.Parse()

	config.LoadDotEnv(".env", "../.env")
	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("load config failed", "error", err)
	}
	logging.Setup(cfg.Log.Level)

	ctx := context.Background()
	shutdownTracing, err := telemetry.Init(ctx, cfg.Tracing())
	if err != nil {
		logging.Fatal("tracing init failed", "error", err)
	}

	var (
		db   repository.DB
		repo repository.MessageRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory message store; data is lost on restart")
		repo = repository.NewMemoryMessageRepository()
	default:
		pool, err := repository.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer pool.Close()
		db = pool
		repo = repository.NewPgMessageRepository(pool)
	}

	// SMS 未設定の場合は通知を無効化（リードの保存は継続）
	var sender sms.Sender
	if smsCfg := cfg.SMS(); smsCfg.Configured() {
		sender = sms.NewTwilioSender(smsCfg.AccountSID, smsCfg.AuthToken)
	}

	m := metrics.New()
	router := app.NewRouter(app.Deps{
		DB:          db,
		Messages:    service.NewMessageService(repo, m),
		Notifier:    service.NewNotificationService(sender, cfg.SMS(), m),
		Metrics:     m,
		StaticDir:   cfg.Server.StaticDir,
		FrontendURL: cfg.Server.FrontendURL,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// covers the synchronous Twilio call on POST /api/messages
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "store", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("tracing shutdown error", "error", err)
	}
}
