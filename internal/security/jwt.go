package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
)

const tokenIssuer = "licensing-portal"

// TokenClaims are the claims carried by a portal bearer token. The jti claim
// makes every issued token distinct, which is what lets the token double as
// the session key.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// TokenCodec signs and verifies bearer tokens with HMAC-SHA256. It is a pure
// computation after construction; the signing key is never mutated.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec. An empty secret is a configuration error, not
// something to default away.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL reports the lifetime tokens are issued with.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a signed token binding accountID and role, expiring at
// now + ttl.
func (c *TokenCodec) Issue(accountID uuid.UUID, role models.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.ttl)
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry. The two failure modes stay
// distinguishable: ErrExpiredToken for a well-formed token past its expiry,
// ErrInvalidToken for everything else.
func (c *TokenCodec) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrExpiredToken
		}
		return nil, domainErrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domainErrors.ErrInvalidToken
	}
	return claims, nil
}

// AccountID parses the subject claim.
func (cl *TokenClaims) AccountID() (uuid.UUID, error) {
	id, err := uuid.Parse(cl.Subject)
	if err != nil {
		return uuid.Nil, domainErrors.ErrInvalidToken
	}
	return id, nil
}
