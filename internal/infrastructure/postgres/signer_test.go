package postgres_test

import (
	"errors"
	"testing"
	"time"

	"github.com/example/salto-club/internal/infrastructure/postgres"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestSignerRoundTrip(t *testing.T) {
	now := time.Date(2026, 12, 28, 10, 0, 0, 0, time.UTC)
	s := postgres.NewSigner(testSecret, "salto-club").WithClock(func() time.Time { return now })

	tok, exp, err := s.Issue("member-1", "ana@club.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if want := now.Add(postgres.AccessTTL); !exp.Equal(want) {
		t.Errorf("exp = %v, want %v", exp, want)
	}
	id, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != "member-1" {
		t.Errorf("id = %q", id)
	}
}

func TestSignerRejects(t *testing.T) {
	now := time.Date(2026, 12, 28, 10, 0, 0, 0, time.UTC)
	clock := now
	s := postgres.NewSigner(testSecret, "salto-club").WithClock(func() time.Time { return clock })
	tok, _, err := s.Issue("member-1", "ana@club.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := postgres.NewSigner([]byte("ffffffffffffffffffffffffffffffff"), "salto-club").WithClock(func() time.Time { return now })
	foreign := postgres.NewSigner(testSecret, "someone-else").WithClock(func() time.Time { return now })

	tests := []struct {
		name   string
		signer *postgres.Signer
		token  string
		at     time.Time
	}{
		{"garbage", s, "not-a-token", now},
		{"other secret", other, tok, now},
		{"other issuer", foreign, tok, now},
		{"expired", s, tok, now.Add(postgres.AccessTTL + time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock = tt.at
			if _, err := tt.signer.Verify(tt.token); !errors.Is(err, postgres.ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
