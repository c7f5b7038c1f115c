package user

import (
	"context"
	"time"
)

// Profile is the public display record created alongside an account.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"full_name"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProfileStore interface {
	Upsert(ctx context.Context, p Profile) error
}
