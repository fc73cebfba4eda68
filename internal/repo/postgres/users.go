package postgres

import (
	"context"

	"github.com/geocoder89/quizvote/internal/domain/user"
	"github.com/geocoder89/quizvote/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, observer: observer{prom: prom}}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, password_hash, created_at) VALUES ($1,$2,$3,$4)`,
			u.ID, u.Name, u.PasswordHash, u.CreatedAt,
		)
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// ListByName returns every user named exactly name, earliest created first.
// Names are not unique, so callers pick the first match that fits.
func (r *UsersRepo) ListByName(ctx context.Context, name string) (users []user.User, err error) {
	var rows pgx.Rows

	err = r.observe("users.list_by_name", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, password_hash, created_at
			FROM users
			WHERE name = $1
			ORDER BY created_at ASC, id ASC`,
			name,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users = make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if e := rows.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt); e != nil {
			return nil, e
		}
		users = append(users, u)
	}
	if e := rows.Err(); e != nil {
		return nil, e
	}
	return users, nil
}
