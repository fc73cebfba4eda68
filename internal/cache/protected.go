package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geocoder89/quizvote/internal/domain/vote"
)

var ErrCircuitOpen = errors.New("results cache circuit open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

type ProtectedConfig struct {
	Timeout          time.Duration // per call
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // open time before a trial call
	HalfOpenMaxCalls int
}

// ProtectedResults puts a timeout and a circuit breaker in front of a remote cache so an
// unreachable redis costs one fast ErrCircuitOpen instead of a dial per request.
type ProtectedResults struct {
	inner ResultsCache
	cfg   ProtectedConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedResults(inner ResultsCache, cfg ProtectedConfig) *ProtectedResults {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 250 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedResults{inner: inner, cfg: cfg, now: time.Now}
}

func (p *ProtectedResults) GetResults(ctx context.Context) (res vote.Results, ok bool, err error) {
	err = p.call(ctx, func(ctx context.Context) error {
		res, ok, err = p.inner.GetResults(ctx)
		return err
	})
	return res, ok, err
}

func (p *ProtectedResults) Generation(ctx context.Context) (gen uint64, err error) {
	err = p.call(ctx, func(ctx context.Context) error {
		gen, err = p.inner.Generation(ctx)
		return err
	})
	return gen, err
}

func (p *ProtectedResults) SetResults(ctx context.Context, res vote.Results, gen uint64) error {
	return p.call(ctx, func(ctx context.Context) error {
		return p.inner.SetResults(ctx, res, gen)
	})
}

// Invalidate bypasses the breaker. Skipping a delete would leave stale results behind
// for a full TTL once redis recovers. Its failures still count toward opening the
// circuit, but a success never closes it: only a trial call does that.
func (p *ProtectedResults) Invalidate(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := p.inner.Invalidate(cctx)
	if err != nil {
		p.mu.Lock()
		p.recordFailure()
		p.mu.Unlock()
	}
	return err
}

func (p *ProtectedResults) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if !p.allow() {
		return ErrCircuitOpen
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := fn(cctx)
	p.after(err)
	return err
}

func (p *ProtectedResults) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateOpen:
		if p.now().Sub(p.openedAt) < p.cfg.Cooldown {
			return false
		}
		p.state = stateHalfOpen
		p.halfOpenInFlight = 1
		return true
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false
		}
		p.halfOpenInFlight++
		return true
	default:
		return true
	}
}

// after records the outcome of a call admitted by allow. ErrStale is a healthy answer.
func (p *ProtectedResults) after(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateHalfOpen && p.halfOpenInFlight > 0 {
		p.halfOpenInFlight--
	}

	if err == nil || errors.Is(err, ErrStale) {
		p.consecutiveFailures = 0
		p.state = stateClosed
		return
	}
	p.recordFailure()
}

// recordFailure must be called with p.mu held.
func (p *ProtectedResults) recordFailure() {
	p.consecutiveFailures++

	if p.state == stateHalfOpen || p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = stateOpen
		p.openedAt = p.now()
	}
}
