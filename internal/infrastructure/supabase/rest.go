package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
)

// TokenSource yields the bearer used for row access.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Reservations is the reservation.Store backed by the reservations table.
type Reservations struct {
	c      *Client
	tokens TokenSource
}

func NewReservations(c *Client, tokens TokenSource) *Reservations {
	return &Reservations{c: c, tokens: tokens}
}

func (r *Reservations) List(ctx context.Context) ([]reservation.Reservation, error) {
	tok, err := r.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	var out []reservation.Reservation
	err = r.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/reservations",
		query:  url.Values{"select": {"*"}, "order": {"created_at.desc"}},
		bearer: tok,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func (r *Reservations) Insert(ctx context.Context, d reservation.Draft) (reservation.Reservation, error) {
	tok, err := r.tokens.AccessToken(ctx)
	if err != nil {
		return reservation.Reservation{}, err
	}
	var out []reservation.Reservation
	err = r.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/reservations",
		query:  url.Values{"select": {"*"}},
		bearer: tok,
		prefer: "return=representation",
		body:   []reservation.Row{d.Row()},
	}, &out)
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	if len(out) == 0 {
		return reservation.Reservation{}, fmt.Errorf("insert reservation: no row returned")
	}
	return out[0], nil
}

// Delete asks for the deleted rows back so a missing id can be told apart from success.
func (r *Reservations) Delete(ctx context.Context, id reservation.ID) error {
	tok, err := r.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	var out []struct {
		ID reservation.ID `json:"id"`
	}
	err = r.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/rest/v1/reservations",
		query:  url.Values{"id": {"eq." + id.String()}, "select": {"id"}},
		bearer: tok,
		prefer: "return=representation",
	}, &out)
	if err != nil {
		return fmt.Errorf("delete reservation %s: %w", id, err)
	}
	if len(out) == 0 {
		return fmt.Errorf("delete reservation %s: %w", id, reservation.ErrNotFound)
	}
	return nil
}

// Profiles is the user.ProfileStore backed by the profiles table.
type Profiles struct {
	c      *Client
	tokens TokenSource
}

func NewProfiles(c *Client, tokens TokenSource) *Profiles {
	return &Profiles{c: c, tokens: tokens}
}

func (p *Profiles) Upsert(ctx context.Context, pr user.Profile) error {
	tok, err := p.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	err = p.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/profiles",
		bearer: tok,
		prefer: "resolution=merge-duplicates,return=minimal",
		body:   []user.Profile{pr},
	}, nil)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", pr.ID, err)
	}
	return nil
}
