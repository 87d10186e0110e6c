// Package redis implements the session store on Redis. Records carry a TTL
// matching their expiry instant, so Redis reaps them on its own; liveness is
// still re-checked from the record at resolve time.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/piyushaneja30/licensing-portal/internal/config"
	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/repository"
)

// NewClient connects and pings a Redis client.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// touchScript bumps lastActivity only while the stored record is not revoked.
// The check and the write happen inside one EVAL, so a touch can never race a
// revocation into a revived session. Returns 0 when the key is gone.
var touchScript = goredis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
	return 0
end
local session = cjson.decode(data)
if session.revoked then
	return 1
end
session.lastActivity = ARGV[1]
local ttl = redis.call('PTTL', KEYS[1])
if ttl > 0 then
	redis.call('SET', KEYS[1], cjson.encode(session), 'PX', ttl)
end
return 1
`)

// revokeScript flips the revoked flag atomically. Returns 1 only when it
// transitioned a live record, so callers can count revocations.
var revokeScript = goredis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
	return 0
end
local session = cjson.decode(data)
if session.revoked then
	return 0
end
session.revoked = true
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
	return 0
end
redis.call('SET', KEYS[1], cjson.encode(session), 'PX', ttl)
return 1
`)

// SessionStore keys sessions by token with a per-account index set for
// invalidate-all. All mutations run server-side in Lua so that a revocation
// always wins against concurrent touches.
type SessionStore struct {
	client *goredis.Client
	logger *zap.Logger
}

func NewSessionStore(client *goredis.Client, logger *zap.Logger) *SessionStore {
	return &SessionStore{client: client, logger: logger.Named("redis_sessions")}
}

func sessionKey(token string) string {
	return "session:" + token
}

func accountIndexKey(accountID uuid.UUID) string {
	return "account:" + accountID.String() + ":sessions"
}

func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domainErrors.ErrSessionExpired
	}

	ok, err := s.client.SetNX(ctx, sessionKey(session.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if !ok {
		return domainErrors.ErrTokenCollision
	}

	indexKey := accountIndexKey(session.AccountID)
	if err := s.client.SAdd(ctx, indexKey, session.Token).Err(); err != nil {
		s.logger.Error("failed to index session for account",
			zap.Error(err), zap.String("account_id", session.AccountID.String()))
	}
	// Keep the index alive at least as long as its newest session.
	if err := s.client.Expire(ctx, indexKey, ttl).Err(); err != nil {
		s.logger.Error("failed to set TTL on account session index",
			zap.Error(err), zap.String("account_id", session.AccountID.String()))
	}
	return nil
}

func (s *SessionStore) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	found, err := touchScript.Run(ctx, s.client,
		[]string{sessionKey(token)}, at.Format(time.RFC3339Nano)).Int()
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if found == 0 {
		return domainErrors.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Invalidate(ctx context.Context, token string) error {
	if err := revokeScript.Run(ctx, s.client, []string{sessionKey(token)}).Err(); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

func (s *SessionStore) InvalidateAllByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	tokens, err := s.client.SMembers(ctx, accountIndexKey(accountID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read account session index: %w", err)
	}

	revoked := 0
	for _, token := range tokens {
		flipped, err := revokeScript.Run(ctx, s.client, []string{sessionKey(token)}).Int()
		if err != nil {
			s.logger.Error("failed to revoke session",
				zap.Error(err), zap.String("account_id", accountID.String()))
			continue
		}
		revoked += flipped
	}
	return revoked, nil
}

// DeleteExpired is a no-op: the per-key TTL already removes expired records.
func (s *SessionStore) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

var _ repository.SessionRepository = (*SessionStore)(nil)
