package supabase

import (
	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/domain/user"
)

// Backend hands each browser its own auth client over a shared HTTP client.
type Backend struct {
	Client     *Client
	RedirectTo string
}

func (b Backend) Connect(storage user.SessionStorage) shell.Deps {
	auth := NewAuth(b.Client, storage)
	return shell.Deps{
		Auth:       auth,
		Profiles:   NewProfiles(b.Client, auth),
		Store:      NewReservations(b.Client, auth),
		RedirectTo: b.RedirectTo,
	}
}
