package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/quizvote/internal/domain/vote"
)

// VotesRepo keeps one vote per user; the user id is the map key.
type VotesRepo struct {
	mu     sync.RWMutex
	byUser map[string]vote.Vote
}

func NewVotesRepo() *VotesRepo {
	return &VotesRepo{
		byUser: make(map[string]vote.Vote),
	}
}

// InsertIfAbsent stores v unless its user already has a vote. It reports whether v was stored.
func (r *VotesRepo) InsertIfAbsent(ctx context.Context, v vote.Vote) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[v.UserID]; exists {
		return false, nil
	}
	r.byUser[v.UserID] = v
	return true, nil
}

func (r *VotesRepo) GetByUser(ctx context.Context, userID string) (vote.Vote, error) {
	if err := ctx.Err(); err != nil {
		return vote.Vote{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byUser[userID]
	if !ok {
		return vote.Vote{}, vote.ErrNotFound
	}
	return v, nil
}

func (r *VotesRepo) CountBySlot(ctx context.Context, slot vote.Slot) ([]vote.OptionCount, error) {
	if !slot.IsValid() {
		return nil, vote.ErrInvalidSlot
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var empty int64
	groups := make(map[string]int64)
	for _, v := range r.byUser {
		opt := v.Answers.Get(slot)
		if opt == nil {
			empty++
			continue
		}
		groups[*opt]++
	}
	r.mu.RUnlock()

	out := make([]vote.OptionCount, 0, len(groups)+1)
	if empty > 0 {
		out = append(out, vote.OptionCount{Option: nil, Count: empty})
	}
	for opt, n := range groups {
		o := opt
		out = append(out, vote.OptionCount{Option: &o, Count: n})
	}
	vote.SortCounts(out)
	return out, nil
}
