package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/pandolabs/ecocart/internal/cart"
)

// CartPage wraps a live Playwright page in the read-only view the message
// router works against: a URL, a parsed DOM snapshot, and a change signal.
type CartPage struct {
	page        playwright.Page
	waitTimeout time.Duration
	logger      *slog.Logger
}

func NewCartPage(page playwright.Page, waitTimeout time.Duration) *CartPage {
	if waitTimeout <= 0 {
		waitTimeout = 6 * time.Second
	}
	return &CartPage{
		page:        page,
		waitTimeout: waitTimeout,
		logger:      slog.Default().With("component", "cart_page"),
	}
}

func (p *CartPage) URL() string {
	return p.page.URL()
}

// Document parses the current rendered HTML. Each call re-reads the page,
// so a document taken after the cart list settles reflects the settled
// list.
func (p *CartPage) Document(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}

	return doc, nil
}

// Changes signals once when a cart row attaches to the DOM, standing in
// for a mutation observer. The channel closes without a signal if no row
// appears before the wait timeout.
func (p *CartPage) Changes(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)

		_, err := p.page.WaitForSelector(cart.RowsSelector, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(float64(p.waitTimeout.Milliseconds())),
		})
		if err != nil {
			p.logger.Debug("no cart row attached before timeout", "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		ch <- struct{}{}
	}()

	return ch
}
