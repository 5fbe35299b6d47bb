package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 12 * time.Hour

type claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// Authenticator issues and verifies HS256 identity tokens.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret, issuer string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Authenticator{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

func (a *Authenticator) Issue(subject string, role Role) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}

	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	now := a.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Parse verifies a token and returns the identity it carries. Every failure
// wraps ErrUnauthenticated.
func (a *Authenticator) Parse(token string) (Identity, error) {
	var c claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	}

	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if c.Subject == "" || !c.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: incomplete claims", ErrUnauthenticated)
	}

	return Identity{Subject: c.Subject, Role: c.Role}, nil
}
