package token

import (
	"errors"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

const issuer = "etagd"

var ErrNoSecret = errors.New("token secret cannot be empty")

// Manager issues and verifies API tokens signed with a shared secret.
type Manager struct {
	key []byte
}

func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	return &Manager{
		key: []byte(secret),
	}, nil
}

// Issue returns a token for the subject. Zero ttl means that the token never expires.
func (manager *Manager) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}

	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.key)
}

// Verify checks the token's signature and expiration and returns its subject.
func (manager *Manager) Verify(rawToken string) (string, error) {
	var claims jwt.RegisteredClaims

	validMethods := []string{
		jwt.SigningMethodHS256.Alg(),
	}

	_, err := jwt.ParseWithClaims(rawToken, &claims, manager.keyFunc,
		jwt.WithValidMethods(validMethods), jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

func (manager *Manager) keyFunc(_ *jwt.Token) (interface{}, error) {
	return manager.key, nil
}
