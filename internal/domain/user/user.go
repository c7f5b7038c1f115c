package user

import (
	"strings"
	"time"
)

type User struct {
	ID          string
	Email       string
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

func (u User) Confirmed() bool { return u.ConfirmedAt != nil }

// NormalizeEmail trims and lower-cases an address before it is sent anywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayNameFromEmail derives the profile name from the local part of the address.
func DisplayNameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
