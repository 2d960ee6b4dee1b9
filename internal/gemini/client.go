package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pandolabs/ecocart/internal/models"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"

	// noTextReply is returned when the endpoint answers well-formed JSON
	// that carries no text parts. It is a reply, not an error.
	noTextReply = "(No text returned)"
)

// coachingPrompt fixes the exact output structure the UI renders: greeting,
// a three-bullet action plan and a quantified impact paragraph.
const coachingPrompt = `You are Pando, a sustainability coach. Based on the cart items, addresses, and delivery windows, suggest how to:
- combine orders to minimize number of shipments,
- delay non-urgent items where helpful,
- reduce packaging waste.
Return a short, actionable plan (bullets). Estimate potential package reduction and rough % carbon savings.

IMPORTANT: Your response MUST follow this exact template:
Hello! Pando here, your sustainability coach. Let's make this order as eco-friendly as possible. Currently, your cart looks like it's headed for many individual shipments, but we can significantly improve that!

Here's a short, actionable plan:
* **Combine Deliveries:** ...
* **Delay Non-Urgent Items:** ...
* **Reduce Packaging:** ...

**Your Impact:**
By following these steps, you could reduce the number of packages from an estimated X to Y. This translates to a potential **A–B% reduction in packaging waste** and a **C–D% decrease in carbon emissions** for this order.

Small changes make a big difference!`

// RequestError is a non-success answer from the generative-language
// endpoint, surfaced as-is with status and raw body.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("gemini request failed: status %d: %s", e.Status, e.Body)
}

// Client issues single-turn generateContent calls. Exactly one round trip
// per Suggest call: no retry, no streaming, no caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.Default().With("component", "gemini_client"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type cartContext struct {
	Note string               `json:"note"`
	Cart *models.CartSnapshot `json:"cart"`
}

// Suggest sends the coaching prompt plus the JSON-serialized snapshot and
// returns the first candidate's concatenated text parts.
func (c *Client) Suggest(ctx context.Context, model, apiKey string, snapshot *models.CartSnapshot) (string, error) {
	if model == "" {
		model = DefaultModel
	}

	payload, err := json.MarshalIndent(cartContext{
		Note: "Raw cart snapshot from front-end scrape (may be partial).",
		Cart: snapshot,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: coachingPrompt + "\n\n" + string(payload)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build request body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(model), url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("requesting suggestion", "model", model, "items", len(snapshot.Items))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestError{Status: resp.StatusCode, Body: string(raw)}
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return extractText(&decoded), nil
}

// extractText concatenates the first candidate's text parts.
func extractText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return noTextReply
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return noTextReply
	}
	return text
}
