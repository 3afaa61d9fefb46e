package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

// ViewKind names a container family.
type ViewKind string

const (
	KindStudent   ViewKind = "student"
	KindReports   ViewKind = "reports"
	KindPrincipal ViewKind = "principal"
)

// ParseViewKind validates a kind from the URL.
func ParseViewKind(raw string) (ViewKind, bool) {
	switch k := ViewKind(raw); k {
	case KindStudent, KindReports, KindPrincipal:
		return k, true
	}
	return "", false
}

// KindsForRole lists the views a role may open.
func KindsForRole(role models.UserRole) []ViewKind {
	switch {
	case role == models.RoleStudent:
		return []ViewKind{KindStudent}
	case role == models.RoleLecturer:
		return []ViewKind{KindReports}
	case role.Reviewer():
		return []ViewKind{KindPrincipal, KindReports}
	}
	return nil
}

// RoleCanView reports whether role may open kind.
func RoleCanView(role models.UserRole, kind ViewKind) bool {
	for _, k := range KindsForRole(role) {
		if k == kind {
			return true
		}
	}
	return false
}

// ViewState is the lifecycle state of a container.
type ViewState string

const (
	StateUnauthenticated ViewState = "unauthenticated"
	StateLoading         ViewState = "loading"
	StateReady           ViewState = "ready"
	StateError           ViewState = "error"
)

// viewContainer owns the collections and transient UI state of one view
// for one session. Loads are tagged with a generation; results from an
// older generation, or arriving after close, are dropped.
type viewContainer struct {
	kind     ViewKind
	alertTTL time.Duration
	now      func() time.Time

	mu            sync.Mutex
	state         ViewState
	generation    uint64
	closed        bool
	data          models.Collections
	loadedAt      time.Time
	lastErr       *dto.ViewError
	cause         error
	busy          map[string]int
	alerts        []models.Alert
	notifications []models.Notification
}

func newViewContainer(kind ViewKind, alertTTL time.Duration, now func() time.Time) *viewContainer {
	return &viewContainer{
		kind:     kind,
		alertTTL: alertTTL,
		now:      now,
		state:    StateUnauthenticated,
		busy:     make(map[string]int),
	}
}

// begin starts a load and returns its generation.
func (c *viewContainer) begin() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, false
	}
	c.generation++
	c.state = StateLoading
	return c.generation, true
}

// apply stores the outcome of load gen. It reports false when the result
// was stale and dropped.
func (c *viewContainer) apply(gen uint64, data models.Collections, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return false
	}
	now := c.now()
	if err != nil {
		appErr := appErrors.FromError(err)
		c.state = StateError
		c.lastErr = &dto.ViewError{Code: appErr.Code, Message: appErr.Message, At: now}
		c.cause = err
		c.pushAlertLocked(models.AlertError, appErr.Message, appErr.Code)
		return true
	}
	c.state = StateReady
	c.data = data
	c.loadedAt = now
	c.lastErr = nil
	c.cause = nil
	return true
}

// unavailable returns the load error when the view failed and never held
// data, so callers cannot mistake the empty defaults for an empty view.
func (c *viewContainer) unavailable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateError || !c.loadedAt.IsZero() || c.cause == nil {
		return nil
	}
	return c.cause
}

func (c *viewContainer) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

func (c *viewContainer) collections() models.Collections {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

func (c *viewContainer) markBusy(list string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy[list]++
}

func (c *viewContainer) clearBusy(list string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[list] <= 1 {
		delete(c.busy, list)
		return
	}
	c.busy[list]--
}

func (c *viewContainer) pushAlert(level models.AlertLevel, message, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushAlertLocked(level, message, code)
}

func (c *viewContainer) pushAlertLocked(level models.AlertLevel, message, code string) {
	now := c.now()
	c.pruneAlertsLocked(now)
	c.alerts = append(c.alerts, models.Alert{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(c.alertTTL),
	})
}

func (c *viewContainer) pruneAlertsLocked(now time.Time) {
	kept := c.alerts[:0]
	for _, a := range c.alerts {
		if !a.Expired(now) {
			kept = append(kept, a)
		}
	}
	c.alerts = kept
}

func (c *viewContainer) dismissAlert(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, a := range c.alerts {
		if a.ID == id {
			c.alerts = append(c.alerts[:i], c.alerts[i+1:]...)
			return true
		}
	}
	return false
}

func (c *viewContainer) notify(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Timestamp: c.now(),
	})
}

func (c *viewContainer) markRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			return true
		}
	}
	return false
}

func (c *viewContainer) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.state = StateUnauthenticated
	c.data = models.Collections{}
	c.alerts = nil
	c.notifications = nil
}

func (c *viewContainer) snapshot() *dto.ViewSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneAlertsLocked(c.now())

	busy := make([]string, 0, len(c.busy))
	for list := range c.busy {
		busy = append(busy, list)
	}
	sort.Strings(busy)

	snap := &dto.ViewSnapshot{
		Kind:          string(c.kind),
		State:         string(c.state),
		Generation:    c.generation,
		Data:          c.data.Clone(),
		Busy:          busy,
		Alerts:        append([]models.Alert{}, c.alerts...),
		Notifications: append([]models.Notification{}, c.notifications...),
	}
	if c.lastErr != nil {
		e := *c.lastErr
		snap.LastError = &e
	}
	if !c.loadedAt.IsZero() {
		at := c.loadedAt
		snap.LoadedAt = &at
	}
	return snap
}
