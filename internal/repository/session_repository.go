package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepository persists portal sessions in Redis through the cache
// repository, or in process memory when Redis is disabled.
type SessionRepository struct {
	cache  *CacheRepository
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	memory map[string]models.Session
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(cache *CacheRepository, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{
		cache:  cache,
		logger: logger,
		now:    time.Now,
		memory: make(map[string]models.Session),
	}
}

// Save stores the session until its expiry.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return appErrors.ErrSessionExpired
	}
	if r.cache.Enabled() {
		return r.cache.Set(ctx, sessionKeyPrefix+session.ID, session, ttl)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memory[session.ID] = *session
	return nil
}

// Get returns the session, or ErrNotFound when it is unknown or expired.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if r.cache.Enabled() {
		var session models.Session
		if err := r.cache.Get(ctx, sessionKeyPrefix+id, &session); err != nil {
			if errors.Is(err, appErrors.ErrCacheMiss) {
				return nil, appErrors.ErrNotFound
			}
			return nil, err
		}
		return &session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.memory[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	if session.Expired(r.now()) {
		delete(r.memory, id)
		return nil, appErrors.ErrNotFound
	}
	return &session, nil
}

// Delete removes the session. Unknown ids are ignored.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if r.cache.Enabled() {
		return r.cache.Delete(ctx, sessionKeyPrefix+id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memory, id)
	return nil
}

// PurgeExpired drops expired in-memory sessions and returns their ids.
// Redis expires keys on its own.
func (r *SessionRepository) PurgeExpired() []string {
	if r.cache.Enabled() {
		return nil
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged []string
	for id, s := range r.memory {
		if s.Expired(now) {
			delete(r.memory, id)
			purged = append(purged, id)
		}
	}
	return purged
}
