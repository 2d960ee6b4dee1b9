package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pandolabs/ecocart/internal/cart"
	"github.com/pandolabs/ecocart/internal/gemini"
	"github.com/pandolabs/ecocart/internal/models"
	"github.com/pandolabs/ecocart/internal/readiness"
)

var supportedHost = regexp.MustCompile(`(?i)(^|\.)amazon\.(com|fresh)\b|(^|\.)smile\.amazon\.com$`)

// IsSupportedHost reports whether a host belongs to the Amazon family the
// extractors understand.
func IsSupportedHost(host string) bool {
	return supportedHost.MatchString(host)
}

// Page is the router's read-only view of the live cart page.
type Page interface {
	// URL returns the page location at call time.
	URL() string
	// Document returns a snapshot of the rendered DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	// Changes optionally delivers a signal when the cart list may have
	// rendered. Nil is fine; the waiter falls back to polling alone.
	Changes(ctx context.Context) <-chan struct{}
}

// CredentialSource reads the stored API credential.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// Suggester turns a snapshot into coaching text.
type Suggester interface {
	Suggest(ctx context.Context, model, apiKey string, snapshot *models.CartSnapshot) (string, error)
}

// Options tunes the router; zero values take the scan defaults.
type Options struct {
	WaitTimeout  time.Duration
	PollInterval time.Duration
	DefaultModel string
}

// Router dispatches typed requests against one cart page. The hosting
// context owns the lifecycle: construct at most one router per page and
// call Close when done with it; there is no hidden global installation.
type Router struct {
	page      Page
	keys      CredentialSource
	suggester Suggester
	scraper   *cart.Scraper
	opts      Options
	logger    *slog.Logger
}

func NewRouter(page Page, keys CredentialSource, suggester Suggester, opts Options) *Router {
	if opts.DefaultModel == "" {
		opts.DefaultModel = gemini.DefaultModel
	}
	return &Router{
		page:      page,
		keys:      keys,
		suggester: suggester,
		scraper:   cart.NewScraper(),
		opts:      opts,
		logger:    slog.Default().With("component", "bridge_router"),
	}
}

// Close is the disposer handed to the hosting context. The router keeps no
// background state of its own, so this is a lifecycle marker only.
func (r *Router) Close() {}

// Dispatch answers exactly once per request. The host check runs before
// anything touches the DOM.
func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	if !IsSupportedHost(pageHost(r.page.URL())) {
		return fail(ErrUnsupportedSite)
	}

	switch req.Type {
	case MessageMount:
		return ack()
	case MessageScan:
		return r.handleScan(ctx)
	case MessageSuggest:
		return r.handleSuggest(ctx, req)
	default:
		return Response{OK: false, Error: fmt.Sprintf("unknown message type: %q", req.Type)}
	}
}

func (r *Router) handleScan(ctx context.Context) Response {
	check := func() bool {
		doc, err := r.page.Document(ctx)
		return err == nil && cart.HasCartRows(doc)
	}

	// The wait result is advisory: a timed-out wait still scrapes once and
	// lets the empty-cart rule below decide.
	ready := readiness.Wait(ctx, check, readiness.Options{
		Timeout:      r.opts.WaitTimeout,
		PollInterval: r.opts.PollInterval,
		Notify:       r.page.Changes(ctx),
	})
	if !ready {
		r.logger.Warn("cart rows did not appear before timeout", "url", r.page.URL())
	}

	doc, err := r.page.Document(ctx)
	if err != nil {
		return Response{OK: false, Error: "Scrape error: " + err.Error()}
	}

	snapshot := r.scraper.Scrape(doc, r.page.URL())
	if len(snapshot.Items) == 0 {
		return fail(ErrEmptyCart)
	}
	return Response{OK: true, Data: snapshot}
}

func (r *Router) handleSuggest(ctx context.Context, req Request) Response {
	if req.Cart == nil {
		return fail(ErrMissingSnapshot)
	}

	apiKey, err := r.keys.APIKey(ctx)
	if err != nil || apiKey == "" {
		// An unreadable store and an unset key look the same to the user:
		// no credential, no network call.
		return fail(ErrMissingCredential)
	}

	model := req.Model
	if model == "" {
		model = r.opts.DefaultModel
	}

	text, err := r.suggester.Suggest(ctx, model, apiKey, req.Cart)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true, Text: text}
}

func pageHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
