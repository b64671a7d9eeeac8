package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	authPkg "paddock/internal/adapters/auth"
	emailPkg "paddock/internal/adapters/email"
	web "paddock/internal/adapters/http"
	"paddock/internal/adapters/storage"
	accountStorePkg "paddock/internal/adapters/storage/account"
	auditStorePkg "paddock/internal/adapters/storage/audit"
	billingStorePkg "paddock/internal/adapters/storage/billing"
	competitionStorePkg "paddock/internal/adapters/storage/competition"
	connectionStorePkg "paddock/internal/adapters/storage/connection"
	contactStorePkg "paddock/internal/adapters/storage/contact"
	horseStorePkg "paddock/internal/adapters/storage/horse"
	notificationStorePkg "paddock/internal/adapters/storage/notification"
	outboxStorePkg "paddock/internal/adapters/storage/outbox"
	sessionStorePkg "paddock/internal/adapters/storage/session"
	stableStorePkg "paddock/internal/adapters/storage/stable"
	"paddock/internal/adapters/upload"
	"paddock/internal/application/orchestrators"
	"paddock/internal/config"
	"paddock/internal/domain/outbox"
	"paddock/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	metrics.Register()

	dsn := cfg.DB.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		slog.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		slog.Error("db_unreachable", "error", err)
		os.Exit(1)
	}
	if err := storage.InitDB(db); err != nil {
		slog.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	slog.Info("db_ready", "path", cfg.DB.Path)

	acctStore := accountStorePkg.NewSQLiteStore(db)
	outboxStore := outboxStorePkg.NewSQLiteStore(db)
	// One stable store serves both the stable and stable event interfaces.
	stStore := stableStorePkg.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:      acctStore,
		SessionStore:      sessionStorePkg.NewSQLiteStore(db),
		CompetitionStore:  competitionStorePkg.NewSQLiteStore(db),
		BillingStore:      billingStorePkg.NewSQLiteStore(db),
		StableStore:       stStore,
		StableEventStore:  stStore,
		ConnectionStore:   connectionStorePkg.NewSQLiteStore(db),
		ContactStore:      contactStorePkg.NewSQLiteStore(db),
		NotificationStore: notificationStorePkg.NewSQLiteStore(db),
		HorseStore:        horseStorePkg.NewSQLiteStore(db),
		OutboxStore:       outboxStore,
		AuditStore:        auditStorePkg.NewSQLiteStore(db),
	}

	// Seed the first admin account when the user table is empty.
	seedDeps := orchestrators.RegisterDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		slog.Error("seed_admin_failed", "error", err)
		os.Exit(1)
	}

	var sender emailPkg.Sender
	if cfg.Email.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
		slog.Info("email_sender_configured", "kind", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.Env == "production" {
			slog.Warn("email_delivery_disabled", "reason", "RESEND_API_KEY not set")
		} else {
			slog.Info("email_sender_configured", "kind", "noop")
		}
	}
	web.SetEmailSender(sender)

	// Background outbox worker drains queued notification emails.
	executors := map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeNotificationEmail: &orchestrators.EmailExecutor{Sender: sender},
	}
	processor := orchestrators.NewOutboxProcessor(outboxStore, executors, orchestrators.ProcessorOptions{
		BaseDelay: cfg.Outbox.BaseDelay,
		MaxDelay:  cfg.Outbox.MaxDelay,
		BatchSize: cfg.Outbox.BatchSize,
	})
	outboxStopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, cfg.Outbox.PollInterval, outboxStopCh)
	defer close(outboxStopCh)

	issuer := authPkg.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	uploadStore := upload.NewLocalStore(cfg.Upload.Dir, "/uploads")

	handler := web.NewMux(stores, issuer, uploadStore, cfg.Auth.GoogleClientID)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.HTTP.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server_failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server_stopping")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown_failed", "error", err)
	}
	slog.Info("server_stopped")
}
