package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/salto-club/internal/application/shell"
	"github.com/example/salto-club/internal/domain/user"
	"github.com/example/salto-club/internal/infrastructure/email"
)

// Backend serves every browser from one pool. Each Connect gets its own LocalAuth.
type Backend struct {
	stores     AuthStores
	pool       *pgxpool.Pool
	redirectTo string
}

func NewBackend(pool *pgxpool.Pool, signer *Signer, mail email.Sender, from, redirectTo string) *Backend {
	return &Backend{
		pool:       pool,
		redirectTo: redirectTo,
		stores: AuthStores{
			Members: NewMemberRepo(pool),
			Codes:   NewConfirmationRepo(pool),
			Refresh: NewRefreshTokenRepo(pool),
			Signer:  signer,
			Mail:    mail,
			From:    from,
		},
	}
}

func (b *Backend) Connect(storage user.SessionStorage) shell.Deps {
	auth := NewLocalAuth(b.stores, storage)
	return shell.Deps{
		Auth:       auth,
		Profiles:   NewProfileRepo(b.pool),
		Store:      NewReservationRepo(b.pool, b.stores.Signer, auth),
		RedirectTo: b.redirectTo,
	}
}
