package reservation

import "context"

// Store is the row store holding reservations for the signed-in member.
type Store interface {
	// List returns every row visible to the session, newest first.
	List(ctx context.Context) ([]Reservation, error)
	Insert(ctx context.Context, d Draft) (Reservation, error)
	// Delete fails with ErrNotFound when no row matched id.
	Delete(ctx context.Context, id ID) error
}
