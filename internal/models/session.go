package models

import "time"

// Session is a signed-in portal session holding the upstream bearer token.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      UserProfile `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// HasToken reports whether an upstream token is available for writes.
func (s *Session) HasToken() bool {
	return s != nil && s.Token != ""
}
