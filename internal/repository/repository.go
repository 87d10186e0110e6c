// Package repository defines the persistence contracts of the identity
// subsystem. Implementations live in the postgres, redis and memory
// subpackages.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
)

// AccountRepository owns registered identities. Email matching is
// case-insensitive everywhere.
type AccountRepository interface {
	// Create persists a new account. Returns errors.ErrEmailExists when the
	// email is already registered.
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, profile models.Profile) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// SessionRepository owns server-side session records keyed by bearer token.
// Expiry is authoritative at read time; DeleteExpired exists purely to bound
// storage growth.
type SessionRepository interface {
	// Create inserts a new live session in a single atomic step. Returns
	// errors.ErrTokenCollision if the token is already present.
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	// Touch updates lastActivity. A revoked session stays revoked.
	Touch(ctx context.Context, token string, at time.Time) error
	// Invalidate flips the validity flag. Idempotent: unknown or already
	// revoked tokens are not an error.
	Invalidate(ctx context.Context, token string) error
	// InvalidateAllByAccount revokes every session of the account and
	// reports how many were live.
	InvalidateAllByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
	// DeleteExpired removes sessions whose expiry has passed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
