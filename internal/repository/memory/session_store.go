// Package memory provides in-process implementations of the repository
// contracts. The session store backs tests and single-binary deployments
// where no Redis is configured.
package memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/repository"
)

const sessionShards = 32

var _ repository.SessionRepository = (*SessionStore)(nil)

type sessionShard struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// SessionStore is a sharded in-memory session map. Sharding by token keeps
// unrelated request traffic from serializing on one lock.
type SessionStore struct {
	shards [sessionShards]*sessionShard

	janitorOnce sync.Once
	closeOnce   sync.Once
	stop        chan struct{}
}

func NewSessionStore() *SessionStore {
	s := &SessionStore{stop: make(chan struct{})}
	for i := range s.shards {
		s.shards[i] = &sessionShard{sessions: make(map[string]*models.Session)}
	}
	return s
}

func (s *SessionStore) shard(token string) *sessionShard {
	h := fnv.New32a()
	h.Write([]byte(token))
	return s.shards[h.Sum32()%sessionShards]
}

func (s *SessionStore) Create(_ context.Context, session *models.Session) error {
	sh := s.shard(session.Token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.sessions[session.Token]; exists {
		return domainErrors.ErrTokenCollision
	}
	cp := *session
	sh.sessions[session.Token] = &cp
	return nil
}

func (s *SessionStore) GetByToken(_ context.Context, token string) (*models.Session, error) {
	sh := s.shard(token)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	session, ok := sh.sessions[token]
	if !ok {
		return nil, domainErrors.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

// Touch updates lastActivity. Re-checks the revoked flag under the shard lock
// so a racing Invalidate always wins: a session being logged out cannot be
// revived by a concurrent touch.
func (s *SessionStore) Touch(_ context.Context, token string, at time.Time) error {
	sh := s.shard(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	session, ok := sh.sessions[token]
	if !ok {
		return domainErrors.ErrSessionNotFound
	}
	if session.Revoked {
		return nil
	}
	if at.After(session.LastActivity) {
		session.LastActivity = at
	}
	return nil
}

func (s *SessionStore) Invalidate(_ context.Context, token string) error {
	sh := s.shard(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if session, ok := sh.sessions[token]; ok {
		session.Revoked = true
	}
	return nil
}

func (s *SessionStore) InvalidateAllByAccount(_ context.Context, accountID uuid.UUID) (int, error) {
	revoked := 0
	now := time.Now()
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, session := range sh.sessions {
			if session.AccountID == accountID && session.IsLive(now) {
				session.Revoked = true
				revoked++
			}
		}
		sh.mu.Unlock()
	}
	return revoked, nil
}

func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	deleted := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for token, session := range sh.sessions {
			if now.After(session.ExpiresAt) {
				delete(sh.sessions, token)
				deleted++
			}
		}
		sh.mu.Unlock()
	}
	return deleted, nil
}

// StartJanitor launches the opportunistic reaper. Access checks never rely on
// it; it only bounds memory growth.
func (s *SessionStore) StartJanitor(interval time.Duration) {
	s.janitorOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.DeleteExpired(context.Background(), time.Now())
				case <-s.stop:
					return
				}
			}
		}()
	})
}

// Close stops the janitor if it was started. Safe to call more than once,
// including concurrently.
func (s *SessionStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
}
