package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid access token")

// AccessTTL is how long a signed access token stays valid.
const AccessTTL = time.Hour

// Signer issues and checks the HS256 access tokens of the self-hosted backend.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewSigner(secret []byte, issuer string) *Signer {
	return &Signer{secret: secret, issuer: issuer, now: time.Now}
}

// WithClock replaces the time source used for issuing and checking tokens.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Issue signs a token for memberID and returns it with its expiry.
func (s *Signer) Issue(memberID, email string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(AccessTTL).Truncate(time.Second)
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return tok, exp, nil
}

// Verify returns the member id a token was issued to.
func (s *Signer) Verify(token string) (string, error) {
	var claims accessClaims
	// Expiry is checked against s.now below rather than the package clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return s.secret, nil })
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return "", fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if claims.Subject == "" || (s.issuer != "" && claims.Issuer != s.issuer) {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
