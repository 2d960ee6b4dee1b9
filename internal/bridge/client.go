package bridge

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = 300 * time.Millisecond
)

// DispatchFunc delivers one request to the page-side router. A returned
// error means delivery itself failed (the receiving context was not ready
// yet); application failures travel inside the Response.
type DispatchFunc func(ctx context.Context, req Request) (Response, error)

// Client wraps a dispatcher with the bounded retry the trigger surface
// needs while the page is still injecting. It never retries on a Response
// error and never retries network-level suggestion failures.
type Client struct {
	dispatch DispatchFunc
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

func NewClient(dispatch DispatchFunc) *Client {
	return &Client{
		dispatch: dispatch,
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
		logger:   slog.Default().With("component", "bridge_client"),
	}
}

// Send delivers one request, retrying delivery failures a fixed number of
// times with a fixed delay. Exhaustion yields a TransportError with a
// reload hint.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		resp, err := c.dispatch(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Warn("message delivery failed", "type", req.Type, "attempt", attempt, "error", err)
	}

	return Response{}, &TransportError{Attempts: c.attempts, Err: lastErr}
}
