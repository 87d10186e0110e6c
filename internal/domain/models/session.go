package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one active login. The bearer token issued to the client doubles
// as the session's lookup key, so revoking the session makes the token useless
// even while its signature still verifies.
type Session struct {
	Token        string    `json:"token"`
	AccountID    uuid.UUID `json:"accountId"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastActivity time.Time `json:"lastActivity"`
	Revoked      bool      `json:"revoked"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
}

// IsLive reports whether the session grants access at instant now. Expiry is
// evaluated here, at check time, never by a scheduled deletion.
func (s *Session) IsLive(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
