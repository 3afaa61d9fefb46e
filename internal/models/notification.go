package models

import "time"

// Notification is a client-local message kept with a view container.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// AlertLevel is the severity of a transient alert.
type AlertLevel string

const (
	AlertSuccess AlertLevel = "success"
	AlertError   AlertLevel = "error"
	AlertInfo    AlertLevel = "info"
)

// Alert is a dismissible message that expires on its own.
type Alert struct {
	ID        string     `json:"id"`
	Level     AlertLevel `json:"level"`
	Message   string     `json:"message"`
	Code      string     `json:"code,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Expired reports whether the alert should no longer be shown at now.
func (a Alert) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}
