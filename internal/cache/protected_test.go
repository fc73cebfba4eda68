package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/quizvote/internal/domain/vote"
)

type flakyCache struct {
	fail  bool
	calls int
	// block, when set, holds GetResults until it is closed; started is signalled first
	block   chan struct{}
	started chan struct{}
}

func (f *flakyCache) GetResults(context.Context) (vote.Results, bool, error) {
	f.calls++
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	if f.fail {
		return vote.Results{}, false, errors.New("dial tcp: connection refused")
	}
	return vote.EmptyResults(), true, nil
}

func (f *flakyCache) Generation(context.Context) (uint64, error) {
	f.calls++
	if f.fail {
		return 0, errors.New("dial tcp: connection refused")
	}
	return 7, nil
}

func (f *flakyCache) SetResults(context.Context, vote.Results, uint64) error {
	f.calls++
	if f.fail {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func (f *flakyCache) Invalidate(context.Context) error {
	f.calls++
	if f.fail {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func TestProtectedResults_OpensAndRecovers(t *testing.T) {
	ctx := context.Background()
	inner := &flakyCache{fail: true}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p := NewProtectedResults(inner, ProtectedConfig{FailureThreshold: 2, Cooldown: 10 * time.Second})
	p.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, _, err := p.GetResults(ctx); err == nil || errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d: expected inner error, got %v", i, err)
		}
	}

	if _, _, err := p.GetResults(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("open circuit must not reach the inner cache, calls=%d", inner.calls)
	}

	// trial call after cooldown succeeds and closes the circuit
	now = now.Add(11 * time.Second)
	inner.fail = false

	if _, ok, err := p.GetResults(ctx); err != nil || !ok {
		t.Fatalf("expected hit after recovery, ok=%v err=%v", ok, err)
	}
	if err := p.SetResults(ctx, vote.EmptyResults(), 0); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}

func TestProtectedResults_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	inner := &flakyCache{fail: true}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p := NewProtectedResults(inner, ProtectedConfig{FailureThreshold: 1, Cooldown: time.Second})
	p.now = func() time.Time { return now }

	_ = p.SetResults(ctx, vote.EmptyResults(), 0)

	now = now.Add(2 * time.Second)
	if err := p.SetResults(ctx, vote.EmptyResults(), 0); err == nil || errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected trial call to reach inner cache, got %v", err)
	}

	if err := p.SetResults(ctx, vote.EmptyResults(), 0); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit to reopen, got %v", err)
	}
}

func TestProtectedResults_InvalidateBypassesOpenCircuit(t *testing.T) {
	inner := &flakyCache{fail: true}
	p := NewProtectedResults(inner, ProtectedConfig{FailureThreshold: 1})

	_, _, _ = p.GetResults(context.Background())
	inner.fail = false

	if err := p.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected invalidate to reach inner cache, calls=%d", inner.calls)
	}
}

func TestProtectedResults_InvalidateKeepsHalfOpenLimit(t *testing.T) {
	ctx := context.Background()
	inner := &flakyCache{fail: true}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	p := NewProtectedResults(inner, ProtectedConfig{FailureThreshold: 1, Cooldown: time.Second, Timeout: time.Minute})
	p.now = func() time.Time { return now }

	_, _, _ = p.GetResults(ctx)

	now = now.Add(2 * time.Second)
	inner.fail = false
	inner.block = make(chan struct{})
	inner.started = make(chan struct{})

	trialDone := make(chan error, 1)
	go func() {
		_, _, err := p.GetResults(ctx)
		trialDone <- err
	}()

	// the trial call now holds the only half-open slot
	<-inner.started

	if err := p.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := p.Generation(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("second call during the trial must be rejected, got %v", err)
	}

	close(inner.block)
	if err := <-trialDone; err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if _, err := p.Generation(ctx); err != nil {
		t.Fatalf("circuit should be closed after the trial, got %v", err)
	}
}

func TestProtectedResults_StaleWriteIsHealthy(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryResults(time.Minute)
	p := NewProtectedResults(inner, ProtectedConfig{FailureThreshold: 1})

	_ = inner.Invalidate(ctx)
	if err := p.SetResults(ctx, vote.EmptyResults(), 0); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if _, _, err := p.GetResults(ctx); err != nil {
		t.Fatalf("a stale write must not open the circuit, got %v", err)
	}
}
