// Package main is the entry point for the Inkwell blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/mail"
	"inkwell/internal/render"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

func main() {
	// Structured logger — text output; level debug keeps cache hit/miss
	// visible during development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Parse the embedded blog and admin templates.
	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)

	// Full-page HTML cache for the public site.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Outgoing mail for post sharing. Without SMTP configured, shares are
	// logged instead of delivered — useful in development.
	var mailer mail.Sender
	if cfg.SMTPHost != "" {
		mailer, err = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			slog.Error("failed to initialize SMTP sender", "error", err)
			os.Exit(1)
		}
		slog.Info("smtp sender configured", "host", cfg.SMTPHost, "from", cfg.MailFrom)
	} else {
		mailer = mail.NewLogSender()
		slog.Warn("smtp not configured — share e-mails will be logged, not sent")
	}

	// Create handler groups with their dependencies.
	publicHandlers := handlers.NewPublic(renderer, postStore, tagStore, commentStore, pageCache, mailer, cfg.BaseURL)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	adminHandlers := handlers.NewAdmin(renderer, postStore, tagStore, commentStore, userStore, pageCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{
		Sessions:      sessionStore,
		Public:        publicHandlers,
		Auth:          authHandlers,
		Admin:         adminHandlers,
		SecureCookies: secureCookies,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// the synchronous SMTP delivery on the share endpoint.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
