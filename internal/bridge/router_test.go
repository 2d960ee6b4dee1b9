package bridge

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandolabs/ecocart/internal/gemini"
	"github.com/pandolabs/ecocart/internal/models"
)

type fakePage struct {
	url      string
	html     string
	docErr   error
	docCalls atomic.Int32
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Document(_ context.Context) (*goquery.Document, error) {
	p.docCalls.Add(1)
	if p.docErr != nil {
		return nil, p.docErr
	}
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

func (p *fakePage) Changes(_ context.Context) <-chan struct{} { return nil }

type fakeKeys struct {
	key string
	err error
}

func (k *fakeKeys) APIKey(_ context.Context) (string, error) { return k.key, k.err }

type fakeSuggester struct {
	text   string
	err    error
	calls  int
	model  string
	apiKey string
}

func (s *fakeSuggester) Suggest(_ context.Context, model, apiKey string, _ *models.CartSnapshot) (string, error) {
	s.calls++
	s.model = model
	s.apiKey = apiKey
	return s.text, s.err
}

const cartPageHTML = `<html><body>
	<div class="sc-list-item">
		<span class="sc-product-title">Bamboo toothbrush</span>
		<span class="sc-product-price">$3.99</span>
		<span class="sc-delivery-date">Arrives Tue</span>
	</div>
</body></html>`

func testRouter(page *fakePage, keys *fakeKeys, suggester *fakeSuggester) *Router {
	return NewRouter(page, keys, suggester, Options{
		WaitTimeout:  50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
}

func snapshotFixture() *models.CartSnapshot {
	return &models.CartSnapshot{
		URL:       "https://www.amazon.com/gp/cart/view.html",
		Timestamp: time.Now().UTC(),
		Items:     []models.CartLineItem{{Source: models.SourcePrime, Title: "Bamboo toothbrush", Quantity: 2}},
	}
}

func TestDispatchRejectsUnsupportedHostWithoutTouchingDOM(t *testing.T) {
	page := &fakePage{url: "https://example.com/cart", html: cartPageHTML}
	router := testRouter(page, &fakeKeys{key: "k"}, &fakeSuggester{text: "plan"})

	for _, msgType := range []MessageType{MessageMount, MessageScan, MessageSuggest} {
		t.Run(string(msgType), func(t *testing.T) {
			resp := router.Dispatch(context.Background(), Request{Type: msgType, Cart: snapshotFixture()})
			assert.False(t, resp.OK)
			assert.Equal(t, "Not on an Amazon cart page.", resp.Error)
		})
	}
	assert.Zero(t, page.docCalls.Load())
}

func TestDispatchMountAcknowledges(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html"}
	router := testRouter(page, &fakeKeys{}, &fakeSuggester{})

	resp := router.Dispatch(context.Background(), Request{Type: MessageMount})

	assert.True(t, resp.OK)
	assert.Empty(t, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestDispatchScanReturnsSnapshot(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html", html: cartPageHTML}
	router := testRouter(page, &fakeKeys{}, &fakeSuggester{})

	resp := router.Dispatch(context.Background(), Request{Type: MessageScan})

	require.True(t, resp.OK, resp.Error)
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "Bamboo toothbrush", resp.Data.Items[0].Title)
	assert.Equal(t, "https://www.amazon.com/gp/cart/view.html", resp.Data.URL)
}

func TestDispatchScanEmptyCartIsAnError(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html", html: "<html><body></body></html>"}
	router := testRouter(page, &fakeKeys{}, &fakeSuggester{})

	resp := router.Dispatch(context.Background(), Request{Type: MessageScan})

	assert.False(t, resp.OK)
	assert.Equal(t, "No cart items found. Open cart page.", resp.Error)
}

func TestDispatchScanSurfacesDocumentFailure(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html", docErr: errors.New("page detached")}
	router := testRouter(page, &fakeKeys{}, &fakeSuggester{})

	resp := router.Dispatch(context.Background(), Request{Type: MessageScan})

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "Scrape error")
	assert.Contains(t, resp.Error, "page detached")
}

func TestDispatchSuggestRequiresSnapshot(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html"}
	suggester := &fakeSuggester{text: "plan"}
	router := testRouter(page, &fakeKeys{key: "k"}, suggester)

	resp := router.Dispatch(context.Background(), Request{Type: MessageSuggest})

	assert.False(t, resp.OK)
	assert.Equal(t, "No cart data. Scan first.", resp.Error)
	assert.Zero(t, suggester.calls)
}

func TestDispatchSuggestRequiresCredential(t *testing.T) {
	tests := []struct {
		name string
		keys *fakeKeys
	}{
		{name: "Unset key", keys: &fakeKeys{}},
		{name: "Store failure reads as missing key", keys: &fakeKeys{err: errors.New("redis down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html"}
			suggester := &fakeSuggester{text: "plan"}
			router := testRouter(page, tt.keys, suggester)

			resp := router.Dispatch(context.Background(), Request{Type: MessageSuggest, Cart: snapshotFixture()})

			assert.False(t, resp.OK)
			assert.Equal(t, "No Gemini API key set.", resp.Error)
			assert.Zero(t, suggester.calls, "no network call without a credential")
		})
	}
}

func TestDispatchSuggestReturnsText(t *testing.T) {
	page := &fakePage{url: "https://smile.amazon.com/gp/cart/view.html"}
	suggester := &fakeSuggester{text: "combine your shipments"}
	router := testRouter(page, &fakeKeys{key: "secret"}, suggester)

	resp := router.Dispatch(context.Background(), Request{Type: MessageSuggest, Cart: snapshotFixture()})

	require.True(t, resp.OK)
	assert.Equal(t, "combine your shipments", resp.Text)
	assert.Equal(t, 1, suggester.calls)
	assert.Equal(t, "secret", suggester.apiKey)
	assert.Equal(t, gemini.DefaultModel, suggester.model, "default model fills in when the request names none")
}

func TestDispatchSuggestPassesRequestedModel(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html"}
	suggester := &fakeSuggester{text: "ok"}
	router := testRouter(page, &fakeKeys{key: "k"}, suggester)

	resp := router.Dispatch(context.Background(), Request{Type: MessageSuggest, Model: "gemini-1.5-pro", Cart: snapshotFixture()})

	require.True(t, resp.OK)
	assert.Equal(t, "gemini-1.5-pro", suggester.model)
}

func TestDispatchSuggestPropagatesRequestError(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html"}
	suggester := &fakeSuggester{err: &gemini.RequestError{Status: 429, Body: "quota exceeded"}}
	router := testRouter(page, &fakeKeys{key: "k"}, suggester)

	resp := router.Dispatch(context.Background(), Request{Type: MessageSuggest, Cart: snapshotFixture()})

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "429")
}

func TestDispatchUnknownMessageType(t *testing.T) {
	page := &fakePage{url: "https://www.amazon.com/gp/cart/view.html"}
	router := testRouter(page, &fakeKeys{}, &fakeSuggester{})

	resp := router.Dispatch(context.Background(), Request{Type: "reset"})

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "unknown message type")
}

func TestIsSupportedHost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{host: "www.amazon.com", expected: true},
		{host: "amazon.com", expected: true},
		{host: "AMAZON.COM", expected: true},
		{host: "smile.amazon.com", expected: true},
		{host: "amazon.fresh", expected: true},
		{host: "www.amazon.fresh", expected: true},
		{host: "example.com", expected: false},
		{host: "myamazon.com", expected: false},
		{host: "amazon.commerce.example", expected: false},
		{host: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSupportedHost(tt.host))
		})
	}
}
