package memory

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/geocoder89/quizvote/internal/domain/question"
)

type QuestionsRepo struct {
	mu    sync.RWMutex
	pools map[question.Variant][]question.Question
}

func NewQuestionsRepo() *QuestionsRepo {
	return &QuestionsRepo{
		pools: make(map[question.Variant][]question.Question),
	}
}

func (r *QuestionsRepo) Create(ctx context.Context, q question.Question) (question.Question, error) {
	if err := ctx.Err(); err != nil {
		return question.Question{}, err
	}
	if err := q.Variant.Check(); err != nil {
		return question.Question{}, err
	}

	r.mu.Lock()
	r.pools[q.Variant] = append(r.pools[q.Variant], q)
	r.mu.Unlock()

	return q, nil
}

// Sample picks up to n distinct questions of the variant. A short pool yields fewer.
func (r *QuestionsRepo) Sample(ctx context.Context, variant question.Variant, n int) ([]question.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	pool := append([]question.Question(nil), r.pools[variant]...)
	r.mu.RUnlock()

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if n < 0 {
		n = 0
	}
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n], nil
}

func (r *QuestionsRepo) Count(ctx context.Context, variant question.Variant) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools[variant]), nil
}
