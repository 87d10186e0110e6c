// Package events defines the auth event stream consumed by the rest of the
// portal (audit, notifications). Publishing is best-effort: a broker outage
// never fails the request that produced the event.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeUserRegistered  = "auth.user.registered"
	TypeSessionRevoked  = "auth.session.revoked"
	TypePasswordChanged = "auth.password.changed"
)

// AuthEvent is the envelope published for every identity lifecycle change.
// It never carries credentials, hashes or tokens.
type AuthEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	AccountID  uuid.UUID `json:"accountId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewAuthEvent stamps an event with id and time.
func NewAuthEvent(eventType string, accountID uuid.UUID) AuthEvent {
	return AuthEvent{
		ID:         uuid.New(),
		Type:       eventType,
		AccountID:  accountID,
		OccurredAt: time.Now(),
	}
}

// Publisher emits auth events.
type Publisher interface {
	Publish(ctx context.Context, event AuthEvent) error
	Close() error
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, AuthEvent) error { return nil }
func (NoopPublisher) Close() error                             { return nil }
