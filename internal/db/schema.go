package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables the service needs. Safe to call on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Schema is plain DDL so integration tests can apply it to a scratch database.
//
// votes_user_uniq is what keeps a user to a single vote; the ledger relies on it
// through INSERT ... ON CONFLICT.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_name ON users(name, created_at, id);

CREATE TABLE IF NOT EXISTS four_option_questions (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    a TEXT NOT NULL,
    b TEXT NOT NULL,
    c TEXT NOT NULL,
    d TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS two_option_questions (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    a TEXT NOT NULL,
    b TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    question_one TEXT,
    question_two TEXT,
    question_three TEXT,
    question_four TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT votes_user_uniq UNIQUE (user_id)
);
`
