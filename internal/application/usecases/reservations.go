package usecases

import (
	"context"
	"log/slog"
	"slices"

	"github.com/example/salto-club/internal/domain/reservation"
	"github.com/example/salto-club/internal/internaltypes"
)

const (
	MsgListFailed   = "Não foi possível carregar suas reservas: "
	MsgInvalidDraft = "Reserva incompleta. Revise data e horário."
	MsgCreateFailed = "Erro ao confirmar reserva: "
	MsgDeleteFailed = "Erro ao apagar no banco: "
)

type ReservationService struct {
	Store reservation.Store
}

// List returns every visible reservation, newest first.
func (s ReservationService) List(ctx context.Context) ([]reservation.Reservation, error) {
	rs, err := s.Store.List(ctx)
	if err != nil {
		slog.Error("list reservations failed", "err", err)
		return nil, internaltypes.NewUserError(MsgListFailed+err.Error(), err)
	}
	slices.SortStableFunc(rs, func(a, b reservation.Reservation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rs, nil
}

func (s ReservationService) Create(ctx context.Context, d reservation.Draft) (reservation.Reservation, error) {
	if err := d.Validate(); err != nil {
		return reservation.Reservation{}, internaltypes.NewUserError(MsgInvalidDraft, err)
	}
	r, err := s.Store.Insert(ctx, d)
	if err != nil {
		slog.Error("create reservation failed", "service", d.Service, "date", d.Date, "err", err)
		return reservation.Reservation{}, internaltypes.NewUserError(MsgCreateFailed+err.Error(), err)
	}
	slog.Info("reservation_event", "event", "created", "id", r.ID.String(), "service", r.Service)
	return r, nil
}

func (s ReservationService) Delete(ctx context.Context, id reservation.ID) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		slog.Error("delete reservation failed", "id", id.String(), "err", err)
		return internaltypes.NewUserError(MsgDeleteFailed+err.Error(), err)
	}
	slog.Info("reservation_event", "event", "deleted", "id", id.String())
	return nil
}
