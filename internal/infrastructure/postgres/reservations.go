package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/internaltypes"
)

// TokenSource yields the access token of the member whose rows are read.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ReservationRepo is the reservation.Store for the self-hosted backend. Every
// query is scoped to the member named by the current access token.
type ReservationRepo struct {
	pool   *pgxpool.Pool
	signer *Signer
	tokens TokenSource
}

func NewReservationRepo(pool *pgxpool.Pool, signer *Signer, tokens TokenSource) *ReservationRepo {
	return &ReservationRepo{pool: pool, signer: signer, tokens: tokens}
}

func (r *ReservationRepo) member(ctx context.Context) (string, error) {
	tok, err := r.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", user.ErrNoSession
	}
	id, err := r.signer.Verify(tok)
	if err != nil {
		return "", fmt.Errorf("%w: %w", internaltypes.ErrUnauthorized, err)
	}
	return id, nil
}

const reservationColumns = `id::text, service, category, date, time, court_number, partners, created_at`

func scanReservation(row pgx.Row) (reservation.Reservation, error) {
	var out reservation.Reservation
	var id string
	err := row.Scan(&id, &out.Service, &out.Category, &out.Date, &out.Time, &out.CourtNumber, &out.Partners, &out.CreatedAt)
	out.ID = reservation.ID(id)
	return out, err
}

func (r *ReservationRepo) List(ctx context.Context) ([]reservation.Reservation, error) {
	memberID, err := r.member(ctx)
	if err != nil {
		return nil, err
	}
	return ListForMember(ctx, r.pool, memberID)
}

// ListForMember reads a member's rows without a session, for operator tooling.
func ListForMember(ctx context.Context, pool *pgxpool.Pool, memberID string) ([]reservation.Reservation, error) {
	rows, err := pool.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE member_id=$1 ORDER BY created_at DESC, id DESC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var out []reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) Insert(ctx context.Context, d reservation.Draft) (reservation.Reservation, error) {
	memberID, err := r.member(ctx)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return InsertForMember(ctx, r.pool, memberID, d)
}

func InsertForMember(ctx context.Context, pool *pgxpool.Pool, memberID string, d reservation.Draft) (reservation.Reservation, error) {
	row := d.Row()
	res, err := scanReservation(pool.QueryRow(ctx, `
		INSERT INTO reservations (member_id, service, category, date, time, court_number, partners)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+reservationColumns,
		memberID, row.Service, row.Category, row.Date, row.Time, row.CourtNumber, row.Partners,
	))
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id reservation.ID) error {
	memberID, err := r.member(ctx)
	if err != nil {
		return err
	}
	return DeleteForMember(ctx, r.pool, memberID, id)
}

func DeleteForMember(ctx context.Context, pool *pgxpool.Pool, memberID string, id reservation.ID) error {
	tag, err := pool.Exec(ctx, `DELETE FROM reservations WHERE id::text=$1 AND member_id=$2`, id.String(), memberID)
	if err != nil {
		return fmt.Errorf("delete reservation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete reservation %s: %w", id, reservation.ErrNotFound)
	}
	return nil
}
