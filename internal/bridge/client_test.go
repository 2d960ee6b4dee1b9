package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendSucceedsFirstTry(t *testing.T) {
	calls := 0
	client := NewClient(func(ctx context.Context, req Request) (Response, error) {
		calls++
		return ack(), nil
	})

	resp, err := client.Send(context.Background(), Request{Type: MessageMount})

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 1, calls)
}

func TestClientSendRetriesDeliveryFailures(t *testing.T) {
	calls := 0
	client := NewClient(func(ctx context.Context, req Request) (Response, error) {
		calls++
		if calls < 3 {
			return Response{}, errors.New("receiving end does not exist")
		}
		return ack(), nil
	})

	resp, err := client.Send(context.Background(), Request{Type: MessageScan})

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 3, calls)
}

func TestClientSendExhaustsRetries(t *testing.T) {
	calls := 0
	cause := errors.New("receiving end does not exist")
	client := NewClient(func(ctx context.Context, req Request) (Response, error) {
		calls++
		return Response{}, cause
	})

	_, err := client.Send(context.Background(), Request{Type: MessageScan})

	require.Error(t, err)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, defaultAttempts, transportErr.Attempts)
	assert.Equal(t, defaultAttempts, calls)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "reload the page")
}

func TestClientSendDoesNotRetryApplicationErrors(t *testing.T) {
	calls := 0
	client := NewClient(func(ctx context.Context, req Request) (Response, error) {
		calls++
		return fail(ErrEmptyCart), nil
	})

	resp, err := client.Send(context.Background(), Request{Type: MessageScan})

	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "No cart items found. Open cart page.", resp.Error)
	assert.Equal(t, 1, calls, "application failures are final, not transport failures")
}

func TestClientSendHonorsContextBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	client := NewClient(func(ctx context.Context, req Request) (Response, error) {
		calls++
		cancel()
		return Response{}, errors.New("not ready")
	})

	_, err := client.Send(ctx, Request{Type: MessageMount})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
