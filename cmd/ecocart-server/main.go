package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pandolabs/ecocart/internal/api"
	"github.com/pandolabs/ecocart/internal/archive"
	"github.com/pandolabs/ecocart/internal/bridge"
	"github.com/pandolabs/ecocart/internal/browser"
	"github.com/pandolabs/ecocart/internal/config"
	"github.com/pandolabs/ecocart/internal/gemini"
	"github.com/pandolabs/ecocart/internal/ratelimit"
	"github.com/pandolabs/ecocart/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Credential store: shared Redis when configured, local file otherwise.
	var store settings.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = settings.NewRedisStore(redisClient)
		logger.Info("using Redis credential store", "addr", cfg.Redis.Addr)
	} else {
		fileStore, err := settings.NewFileStore(cfg.Settings.FilePath)
		if err != nil {
			logger.Error("failed to open settings file", "error", err, "path", cfg.Settings.FilePath)
			os.Exit(1)
		}
		store = fileStore
		logger.Info("using file credential store", "path", cfg.Settings.FilePath)
	}

	// The scan archive is optional.
	var scans api.ScanArchive
	if cfg.Database.URL != "" {
		scanArchive, err := archive.New(ctx, archive.Config{
			URL:      cfg.Database.URL,
			MaxConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer scanArchive.Close()
		scans = scanArchive
		logger.Info("scan archive enabled")
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ProxyServer:    cfg.Browser.ProxyServer,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ExtraHeaders:   browser.DefaultOptions().ExtraHeaders,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		logger.Error("failed to open page", "error", err)
		os.Exit(1)
	}

	limiter := ratelimit.NewSimpleRateLimiter(cfg.Scan.RateLimitMin, cfg.Scan.RateLimitMax)
	if err := limiter.Wait(ctx); err != nil {
		logger.Error("rate limit wait interrupted", "error", err)
		os.Exit(1)
	}

	if err := b.NavigateWithRetry(page, cfg.Scan.CartURL, cfg.Scan.MaxRetries); err != nil {
		logger.Error("failed to open cart page", "error", err, "url", cfg.Scan.CartURL)
		os.Exit(1)
	}

	cartPage := browser.NewCartPage(page, cfg.Scan.WaitTimeout)
	suggester := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Timeout)

	router := bridge.NewRouter(cartPage, store, suggester, bridge.Options{
		WaitTimeout:  cfg.Scan.WaitTimeout,
		PollInterval: cfg.Scan.PollInterval,
		DefaultModel: cfg.Gemini.Model,
	})
	defer router.Close()

	handlers := api.NewHandlers(router, store, scans, logger)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr, "cart_url", cfg.Scan.CartURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
