package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/quizvote/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items []user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	r.items = append(r.items, u)
	r.mu.Unlock()

	return u, nil
}

// ListByName returns users named exactly name, earliest created first.
func (r *UsersRepo) ListByName(ctx context.Context, name string) ([]user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]user.User, 0)
	for _, u := range r.items {
		if u.Name == name {
			out = append(out, u)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
