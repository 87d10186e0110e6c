package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/repository"
)

// SessionRepository implements repository.SessionRepository for PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, account_id, issued_at, expires_at, last_activity, revoked, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		session.Token,
		session.AccountID,
		session.IssuedAt,
		session.ExpiresAt,
		session.LastActivity,
		session.Revoked,
		session.IPAddress,
		session.UserAgent,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domainErrors.ErrTokenCollision
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, account_id, issued_at, expires_at, last_activity, revoked, ip_address, user_agent
		FROM sessions
		WHERE token = $1
	`
	s := &models.Session{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&s.Token,
		&s.AccountID,
		&s.IssuedAt,
		&s.ExpiresAt,
		&s.LastActivity,
		&s.Revoked,
		&s.IPAddress,
		&s.UserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by token: %w", err)
	}
	return s, nil
}

// Touch bumps last_activity on live sessions only, so it can never race a
// logout into a revived session.
func (r *SessionRepository) Touch(ctx context.Context, token string, at time.Time) error {
	query := `UPDATE sessions SET last_activity = $1 WHERE token = $2 AND NOT revoked`
	_, err := r.pool.Exec(ctx, query, at, token)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Invalidate(ctx context.Context, token string) error {
	query := `UPDATE sessions SET revoked = true WHERE token = $1`
	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

func (r *SessionRepository) InvalidateAllByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	query := `
		UPDATE sessions SET revoked = true
		WHERE account_id = $1 AND NOT revoked AND expires_at > now()
	`
	result, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate account sessions: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`
	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(result.RowsAffected()), nil
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
