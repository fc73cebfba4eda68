package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/quizvote/internal/domain/vote"
	"github.com/redis/go-redis/v9"
)

// ResultsKey is versioned so a change to the results encoding never reads stale shapes.
const (
	ResultsKey    = "quizvote:results:v1"
	GenerationKey = "quizvote:results:gen"
)

// ErrStale is returned by SetResults when an Invalidate happened after the generation
// the results were computed under. Nothing is stored.
var ErrStale = errors.New("results computed before the last invalidation")

// ResultsCache stores the last computed results. A miss is (zero, false, nil).
//
// Writers read Generation before aggregating and pass it to SetResults, so results
// that raced with a recorded vote are dropped instead of cached.
type ResultsCache interface {
	GetResults(ctx context.Context) (vote.Results, bool, error)
	Generation(ctx context.Context) (uint64, error)
	SetResults(ctx context.Context, res vote.Results, gen uint64) error
	Invalidate(ctx context.Context) error
}

// MemoryResults keeps results per process; each API replica aggregates on its own.
type MemoryResults struct {
	c *Cache[vote.Results]

	mu  sync.Mutex
	gen uint64
}

func NewMemoryResults(ttl time.Duration) *MemoryResults {
	return &MemoryResults{c: New[vote.Results](ttl)}
}

func (m *MemoryResults) GetResults(_ context.Context) (vote.Results, bool, error) {
	res, ok := m.c.Get(ResultsKey)
	return res, ok, nil
}

func (m *MemoryResults) Generation(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *MemoryResults) SetResults(_ context.Context, res vote.Results, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return ErrStale
	}
	m.c.Set(ResultsKey, res)
	return nil
}

func (m *MemoryResults) Invalidate(_ context.Context) error {
	m.mu.Lock()
	m.gen++
	m.c.Delete(ResultsKey)
	m.mu.Unlock()
	return nil
}

// setIfGeneration writes the results only while the generation key still holds the
// value the caller read. A missing generation key counts as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisResults shares cached results and their generation between API replicas.
type RedisResults struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisResults(rdb *redis.Client, ttl time.Duration) *RedisResults {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisResults{rdb: rdb, ttl: ttl}
}

func (r *RedisResults) GetResults(ctx context.Context) (vote.Results, bool, error) {
	raw, err := r.rdb.Get(ctx, ResultsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return vote.Results{}, false, nil
	}
	if err != nil {
		return vote.Results{}, false, fmt.Errorf("redis get results: %w", err)
	}

	var res vote.Results
	if err := json.Unmarshal(raw, &res); err != nil {
		return vote.Results{}, false, fmt.Errorf("decode cached results: %w", err)
	}
	return res, true, nil
}

func (r *RedisResults) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.rdb.Get(ctx, GenerationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

func (r *RedisResults) SetResults(ctx context.Context, res vote.Results, gen uint64) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	stored, err := setIfGeneration.Run(ctx, r.rdb,
		[]string{GenerationKey, ResultsKey},
		strconv.FormatUint(gen, 10), raw, r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis set results: %w", err)
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

// Invalidate bumps the generation and drops the cached results in one transaction.
func (r *RedisResults) Invalidate(ctx context.Context) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, ResultsKey)
		return nil
	})
	return err
}
