package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS members (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password_hash BYTEA NOT NULL,
	confirmed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS email_confirmations (
	code TEXT PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	token TEXT PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY REFERENCES members(id) ON DELETE CASCADE,
	full_name TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reservations (
	id BIGSERIAL PRIMARY KEY,
	member_id UUID NOT NULL REFERENCES members(id) ON DELETE CASCADE,
	service TEXT NOT NULL,
	category TEXT NOT NULL,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	court_number TEXT,
	partners TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reservations_member_created ON reservations(member_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_member ON refresh_tokens(member_id);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
