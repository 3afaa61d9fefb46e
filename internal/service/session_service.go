package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/gateway"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

type authGateway interface {
	Login(ctx context.Context, req dto.LoginRequest) (*gateway.AuthResult, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*gateway.AuthResult, error)
}

type sessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionEndFunc is notified when a session ends by logout or expiry.
type SessionEndFunc func(sessionID string)

// SessionConfig tunes session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// SessionService owns the portal session lifecycle: login, register,
// logout and lookup of the current user.
type SessionService struct {
	gateway   authGateway
	store     sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SessionConfig
	now       func() time.Time

	mu        sync.RWMutex
	listeners []SessionEndFunc
}

// NewSessionService constructs a SessionService.
func NewSessionService(gw authGateway, store sessionStore, validate *validator.Validate, logger *zap.Logger, cfg SessionConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &SessionService{gateway: gw, store: store, validator: validate, logger: logger, cfg: cfg, now: time.Now}
}

// OnSessionEnd registers fn to run after a session is removed.
func (s *SessionService) OnSessionEnd(fn SessionEndFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Login authenticates against the upstream API and opens a session.
func (s *SessionService) Login(ctx context.Context, req dto.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	result, err := s.gateway.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "login response carried no token")
	}
	return s.open(ctx, result)
}

// Register creates the upstream account. When the upstream also issues a
// token a session is opened; otherwise the session is nil and the caller
// must log in.
func (s *SessionService) Register(ctx context.Context, req dto.RegisterRequest) (*models.Session, *models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	result, err := s.gateway.Register(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if result.Token == "" {
		s.logger.Info("registered without session", zap.String("user", result.User.Username))
		return nil, &result.User, nil
	}
	session, err := s.open(ctx, result)
	if err != nil {
		return nil, nil, err
	}
	return session, &session.User, nil
}

func (s *SessionService) open(ctx context.Context, result *gateway.AuthResult) (*models.Session, error) {
	now := s.now().UTC()
	expiresAt, err := s.expiry(result.Token, now)
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		ID:        uuid.NewString(),
		Token:     result.Token,
		User:      result.User,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	s.logger.Info("session opened",
		zap.String("session_id", session.ID),
		zap.String("user", session.User.Username),
		zap.String("role", string(session.User.Role)),
		zap.String("shape", string(result.Shape)),
	)
	return session, nil
}

// expiry reads exp from the upstream token without verifying it; the
// portal cannot verify upstream signatures. Opaque tokens use the TTL.
func (s *SessionService) expiry(token string, now time.Time) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return now.Add(s.cfg.TTL), nil
	}
	exp := claims.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return time.Time{}, appErrors.ErrSessionExpired
	}
	return exp, nil
}

// Current resolves a session id to the live session.
func (s *SessionService) Current(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Expired(s.now()) {
		s.end(ctx, sessionID, "expired")
		return nil, appErrors.ErrSessionExpired
	}
	return session, nil
}

// Logout removes the session and closes its views.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	s.notify(sessionID)
	s.logger.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

// Expire force-logs-out a session after the upstream rejected its token.
func (s *SessionService) Expire(ctx context.Context, sessionID string) {
	s.end(ctx, sessionID, "upstream rejected token")
}

func (s *SessionService) end(ctx context.Context, sessionID, reason string) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to delete session", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.notify(sessionID)
	s.logger.Warn("session ended", zap.String("session_id", sessionID), zap.String("reason", reason))
}

func (s *SessionService) notify(sessionID string) {
	s.mu.RLock()
	listeners := append([]SessionEndFunc(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(sessionID)
	}
}
