package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pandolabs/ecocart/internal/bridge"
	"github.com/pandolabs/ecocart/internal/browser"
	"github.com/pandolabs/ecocart/internal/config"
	"github.com/pandolabs/ecocart/internal/gemini"
	"github.com/pandolabs/ecocart/internal/ratelimit"
	"github.com/pandolabs/ecocart/internal/settings"
)

// ecocart-scan opens the cart page once, scans it, and prints the snapshot
// as JSON. With -suggest it also asks Gemini for shipment coaching on the
// snapshot it just took.
func main() {
	var (
		cartURL = flag.String("url", "", "cart page URL (defaults to SCAN_CART_URL)")
		suggest = flag.Bool("suggest", false, "request coaching text after the scan")
		model   = flag.String("model", "", "Gemini model override")
		apiKey  = flag.String("api-key", "", "Gemini API key (defaults to the settings file)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config: %v", err)
	}
	if *cartURL == "" {
		*cartURL = cfg.Scan.CartURL
	}

	ctx := context.Background()

	store := credentialStore(cfg, *apiKey)

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
		fatal("failed to initialize browser: %v", err)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		fatal("failed to open page: %v", err)
	}

	limiter := ratelimit.NewSimpleRateLimiter(cfg.Scan.RateLimitMin, cfg.Scan.RateLimitMax)
	if err := limiter.Wait(ctx); err != nil {
		fatal("rate limit wait interrupted: %v", err)
	}

	if err := b.NavigateWithRetry(page, *cartURL, cfg.Scan.MaxRetries); err != nil {
		fatal("failed to open cart page: %v", err)
	}

	cartPage := browser.NewCartPage(page, cfg.Scan.WaitTimeout)
	suggester := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Timeout)

	router := bridge.NewRouter(cartPage, store, suggester, bridge.Options{
		WaitTimeout:  cfg.Scan.WaitTimeout,
		PollInterval: cfg.Scan.PollInterval,
		DefaultModel: cfg.Gemini.Model,
	})
	defer router.Close()

	client := bridge.NewClient(func(ctx context.Context, req bridge.Request) (bridge.Response, error) {
		return router.Dispatch(ctx, req), nil
	})

	resp, err := client.Send(ctx, bridge.Request{Type: bridge.MessageScan})
	if err != nil {
		fatal("scan failed: %v", err)
	}
	if !resp.OK {
		fatal("%s", resp.Error)
	}

	out, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		fatal("failed to encode snapshot: %v", err)
	}
	fmt.Println(string(out))

	if !*suggest {
		return
	}

	resp, err = client.Send(ctx, bridge.Request{
		Type:  bridge.MessageSuggest,
		Model: *model,
		Cart:  resp.Data,
	})
	if err != nil {
		fatal("suggestion failed: %v", err)
	}
	if !resp.OK {
		fatal("%s", resp.Error)
	}

	fmt.Println()
	fmt.Println(resp.Text)
}

// credentialStore prefers an explicit -api-key, then the settings file.
// The server's Redis store does not apply here; one-shot scans stay local.
func credentialStore(cfg *config.Config, override string) settings.Store {
	if override != "" {
		return staticStore(override)
	}

	store, err := settings.NewFileStore(cfg.Settings.FilePath)
	if err != nil {
		fatal("failed to open settings file: %v", err)
	}
	return store
}

type staticStore string

func (s staticStore) APIKey(_ context.Context) (string, error) { return string(s), nil }

func (s staticStore) SetAPIKey(_ context.Context, _ string) error {
	return fmt.Errorf("static credential is read-only")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ecocart-scan: "+format+"\n", args...)
	os.Exit(1)
}
