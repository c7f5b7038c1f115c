package usecases_test

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/domain/user"
)

type fakeAuth struct {
	calls      int
	signUpErr  error
	signInErr  error
	signOutErr error
	lastEmail  string
	redirect   string
	user       user.User
}

func (f *fakeAuth) CurrentSession(context.Context) (*user.Session, error) { return nil, nil }

func (f *fakeAuth) OnSessionChange(user.Listener) func() { return func() {} }

func (f *fakeAuth) SignUp(_ context.Context, email, _ string, opts user.SignUpOptions) (user.User, error) {
	f.calls++
	f.lastEmail = email
	f.redirect = opts.RedirectTo
	if f.signUpErr != nil {
		return user.User{}, f.signUpErr
	}
	return f.user, nil
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, _ string) (*user.Session, error) {
	f.calls++
	f.lastEmail = email
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &user.Session{AccessToken: "tok", User: f.user}, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.calls++
	return f.signOutErr
}

func (f *fakeAuth) ExchangeCode(_ context.Context, code string) (*user.Session, error) {
	f.calls++
	if code != "good" {
		return nil, user.ErrInvalidCode
	}
	return &user.Session{AccessToken: "tok", User: f.user}, nil
}

type fakeProfiles struct {
	got []user.Profile
	err error
}

func (f *fakeProfiles) Upsert(_ context.Context, p user.Profile) error {
	f.got = append(f.got, p)
	return f.err
}

type fakeStore struct {
	rows      []reservation.Reservation
	next      int
	insertErr error
	listErr   error
	inserts   int
	clock     time.Time
}

func (f *fakeStore) List(context.Context) ([]reservation.Reservation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]reservation.Reservation(nil), f.rows...), nil
}

func (f *fakeStore) Insert(_ context.Context, d reservation.Draft) (reservation.Reservation, error) {
	f.inserts++
	if f.insertErr != nil {
		return reservation.Reservation{}, f.insertErr
	}
	f.next++
	f.clock = f.clock.Add(time.Minute)
	row := d.Row()
	r := reservation.Reservation{
		ID:          reservation.ID(strconv.Itoa(f.next)),
		Service:     row.Service,
		Category:    row.Category,
		Date:        row.Date,
		Time:        row.Time,
		CourtNumber: row.CourtNumber,
		Partners:    row.Partners,
		CreatedAt:   f.clock,
	}
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeStore) Delete(_ context.Context, id reservation.ID) error {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, reservation.ErrNotFound)
}
