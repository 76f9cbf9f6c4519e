package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Ticker struct {
	interval time.Duration
	limit    int
}

// NewTicker returns a driver that requests once per interval. A limit of 0 means
// it keeps going until its context is cancelled.
func NewTicker(interval time.Duration, limit int) (*Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}

	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", limit)
	}

	return &Ticker{
		interval: interval,
		limit:    limit,
	}, nil
}

func (t *Ticker) Run(ctx context.Context, r Requester) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	requests := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Request()
			requests++
			if t.limit > 0 && requests >= t.limit {
				slog.Debug("Ticker reached its limit", "requests", requests)
				return nil
			}
		}
	}
}
