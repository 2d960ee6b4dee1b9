package readiness

import (
	"context"
	"time"
)

const (
	DefaultTimeout      = 6 * time.Second
	DefaultPollInterval = 200 * time.Millisecond
)

// Options tunes a single Wait call.
type Options struct {
	// Timeout bounds the whole wait; DefaultTimeout when zero.
	Timeout time.Duration
	// PollInterval paces the periodic re-check; DefaultPollInterval when zero.
	PollInterval time.Duration
	// Notify optionally delivers change notifications (for example a
	// browser-side selector wait). Each delivery triggers an immediate
	// re-check, racing the poll watch.
	Notify <-chan struct{}
}

// Wait suspends the caller until check reports true or the timeout elapses,
// and returns what check settled to. A timeout is an ordinary false, not an
// error. Two independent watches run the same predicate - a poll ticker and
// the optional notification channel - and the first to observe true wins.
// Both watches are torn down exactly once on return, whichever one fired.
// check may be invoked from more than one goroutine.
func Wait(ctx context.Context, check func() bool, opts Options) bool {
	if check() {
		return true
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so a late watcher can settle without blocking after the
	// winner has already been read.
	settled := make(chan struct{}, 2)

	go pollWatch(watchCtx, check, opts.PollInterval, settled)
	if opts.Notify != nil {
		go notifyWatch(watchCtx, check, opts.Notify, settled)
	}

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case <-settled:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func pollWatch(ctx context.Context, check func() bool, interval time.Duration, settled chan<- struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if check() {
				settled <- struct{}{}
				return
			}
		}
	}
}

func notifyWatch(ctx context.Context, check func() bool, notify <-chan struct{}, settled chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notify:
			if !ok {
				return
			}
			if check() {
				settled <- struct{}{}
				return
			}
		}
	}
}
