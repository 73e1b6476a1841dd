package slack

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// stateTTL bounds how long an OAuth round-trip may take.
const stateTTL = 60 * time.Minute

var (
	// ErrStateExpired means the state token outlived its TTL.
	ErrStateExpired = errors.New("state token expired")
	// ErrStateInvalid means the token is forged, malformed, or carries
	// the wrong client id.
	ErrStateInvalid = errors.New("state token invalid")
)

// StateTokens issues and checks the signed state parameter carried
// through the OAuth redirect, binding it to our client id.
type StateTokens struct {
	secret   []byte
	clientID string
	clock    clockwork.Clock
}

// NewStateTokens creates a state token signer keyed on the client secret.
func NewStateTokens(clientSecret, clientID string, clock clockwork.Clock) *StateTokens {
	return &StateTokens{
		secret:   []byte(clientSecret),
		clientID: clientID,
		clock:    clock,
	}
}

// Generate signs a fresh state token.
func (s *StateTokens) Generate() (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   s.clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign state token: %w", err)
	}
	return token, nil
}

// Validate checks signature, expiry, and client id binding.
func (s *StateTokens) Validate(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrStateExpired
	case err != nil:
		return ErrStateInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != s.clientID {
		return ErrStateInvalid
	}
	return nil
}
