package db

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 10 * time.Second
)

// Backoff doubles from 500ms per attempt up to 10s and adds up to 250ms of jitter.
func Backoff(attempt int) time.Duration {
	delay := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt)))
	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}
	return delay + time.Duration(rand.IntN(250))*time.Millisecond
}

// Connect retries NewPool so the API can start alongside a database that is still
// booting. It gives up after attempts tries or when ctx ends.
func Connect(ctx context.Context, dbURL string, opts PoolOptions, attempts int, log *slog.Logger) (*pgxpool.Pool, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		pool, err := NewPool(ctx, dbURL, opts)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		wait := Backoff(attempt)
		log.WarnContext(ctx, "db_connect_retry", "attempt", attempt+1, "wait_ms", wait.Milliseconds(), "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}
