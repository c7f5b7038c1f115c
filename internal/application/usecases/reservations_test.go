package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/salto-club/internal/application/usecases"
	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/internaltypes"
)

func padelDraft() reservation.Draft {
	return reservation.Draft{
		Service:  "Courts",
		Category: "Padel",
		Date:     "28 Dez",
		Time:     reservation.TimeRange{Start: "10:00", End: "11:00"},
		Unit:     2,
		Partners: []string{"Carlos"},
	}
}

func TestListNewestFirst(t *testing.T) {
	base := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{rows: []reservation.Reservation{
		{ID: "1", CreatedAt: base},
		{ID: "3", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "2", CreatedAt: base.Add(time.Hour)},
	}}
	got, err := usecases.ReservationService{Store: store}.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID.String())
	}
	if strings.Join(ids, ",") != "3,2,1" {
		t.Errorf("order = %v", ids)
	}
}

func TestCreateValidatesBeforeStore(t *testing.T) {
	store := &fakeStore{}
	d := padelDraft()
	d.Time.End = "13:00"
	_, err := usecases.ReservationService{Store: store}.Create(context.Background(), d)
	if !errors.Is(err, reservation.ErrInvalidEnd) {
		t.Fatalf("err = %v, want ErrInvalidEnd", err)
	}
	if store.inserts != 0 {
		t.Errorf("store called %d times", store.inserts)
	}
}

func TestCreateFailureMessage(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("permission denied")}
	_, err := usecases.ReservationService{Store: store}.Create(context.Background(), padelDraft())
	if got := internaltypes.UserMessage(err, ""); got != usecases.MsgCreateFailed+"permission denied" {
		t.Errorf("message = %q", got)
	}
}

func TestListFailureCarriesUnderlyingText(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	_, err := usecases.ReservationService{Store: store}.List(context.Background())
	if got := internaltypes.UserMessage(err, ""); got != usecases.MsgListFailed+"connection refused" {
		t.Errorf("message = %q", got)
	}
}

func TestDeleteMissingCarriesUnderlyingText(t *testing.T) {
	store := &fakeStore{}
	err := usecases.ReservationService{Store: store}.Delete(context.Background(), "404")
	if !errors.Is(err, reservation.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	msg := internaltypes.UserMessage(err, "")
	if !strings.HasPrefix(msg, usecases.MsgDeleteFailed) || !strings.Contains(msg, "reservation not found") {
		t.Errorf("message = %q", msg)
	}
}
