package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/salto-club/internal/domain/user"
)

var ErrEmailTaken = errors.New("User already registered")

// Member is a user row plus its password hash.
type Member struct {
	user.User
	PasswordHash []byte
}

type MemberRepo struct{ pool *pgxpool.Pool }

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo { return &MemberRepo{pool: pool} }

func (r *MemberRepo) Create(ctx context.Context, m Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO members (id, email, password_hash, confirmed_at, created_at) VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Email, m.PasswordHash, m.ConfirmedAt, m.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MemberRepo) scanOne(ctx context.Context, where string, arg any) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, email, password_hash, confirmed_at, created_at FROM members WHERE `+where, arg)
	var m Member
	if err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.ConfirmedAt, &m.CreatedAt); err != nil {
		return Member{}, wrapNotFound(err)
	}
	return m, nil
}

func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (Member, error) {
	return r.scanOne(ctx, "email=$1", email)
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (Member, error) {
	return r.scanOne(ctx, "id=$1", id)
}

func (r *MemberRepo) Confirm(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE members SET confirmed_at=COALESCE(confirmed_at,$2) WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("confirm member %s: %w", id, user.ErrInvalidCode)
	}
	return nil
}

// ConfirmationRepo holds the one-time codes mailed to new members.
type ConfirmationRepo struct{ pool *pgxpool.Pool }

func NewConfirmationRepo(pool *pgxpool.Pool) *ConfirmationRepo { return &ConfirmationRepo{pool: pool} }

func (r *ConfirmationRepo) Create(ctx context.Context, code, memberID string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_confirmations (code, member_id, expires_at) VALUES ($1,$2,$3)`, code, memberID, expiresAt)
	return err
}

// Consume deletes the code and returns its member if it had not expired.
func (r *ConfirmationRepo) Consume(ctx context.Context, code string, now time.Time) (string, error) {
	var memberID string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM email_confirmations WHERE code=$1 AND expires_at > $2 RETURNING member_id::text`, code, now,
	).Scan(&memberID)
	if err != nil {
		return "", wrapNotFound(err)
	}
	return memberID, nil
}

// RefreshTokenRepo stores opaque refresh tokens. Rotation revokes the old token.
type RefreshTokenRepo struct{ pool *pgxpool.Pool }

func NewRefreshTokenRepo(pool *pgxpool.Pool) *RefreshTokenRepo { return &RefreshTokenRepo{pool: pool} }

func (r *RefreshTokenRepo) Create(ctx context.Context, token, memberID string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (token, member_id, expires_at) VALUES ($1,$2,$3)`, token, memberID, expiresAt)
	return err
}

// Revoke marks token unusable and returns its member. Expired or already
// revoked tokens are reported as not found.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, token string, now time.Time) (string, error) {
	var memberID string
	err := r.pool.QueryRow(ctx, `
		UPDATE refresh_tokens SET revoked_at=$2
		WHERE token=$1 AND revoked_at IS NULL AND expires_at > $2
		RETURNING member_id::text
	`, token, now).Scan(&memberID)
	if err != nil {
		return "", wrapNotFound(err)
	}
	return memberID, nil
}

// ProfileRepo is the user.ProfileStore for the postgres backend.
type ProfileRepo struct{ pool *pgxpool.Pool }

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo { return &ProfileRepo{pool: pool} }

func (r *ProfileRepo) Upsert(ctx context.Context, p user.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, full_name, updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET full_name=EXCLUDED.full_name, updated_at=EXCLUDED.updated_at
	`, p.ID, p.DisplayName, p.UpdatedAt)
	return err
}
