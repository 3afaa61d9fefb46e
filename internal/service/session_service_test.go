package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/gateway"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/repository"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func newTestSessionService(portal *fakePortal) *SessionService {
	store := repository.NewSessionRepository(nil, nil)
	return NewSessionService(portal, store, nil, nil, SessionConfig{TTL: time.Hour})
}

var lecturerProfile = models.UserProfile{ID: 7, Username: "thabo.m", Email: "thabo@uni.ac", Role: models.RoleLecturer}

func TestSessionLoginUsesTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Shape: gateway.AuthShapeNested, Token: signedToken(t, exp), User: lecturerProfile}
	svc := newTestSessionService(portal)

	session, err := svc.Login(context.Background(), dto.LoginRequest{Email: "thabo@uni.ac", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, exp.Equal(session.ExpiresAt))
	assert.Equal(t, lecturerProfile, session.User)

	current, err := svc.Current(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Token, current.Token)
}

func TestSessionLoginOpaqueTokenUsesTTL(t *testing.T) {
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Shape: gateway.AuthShapeFlat, Token: "opaque-token", User: lecturerProfile}
	svc := newTestSessionService(portal)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	expiresAt, err := svc.expiry("opaque-token", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)
}

func TestSessionLoginRejectsExpiredToken(t *testing.T) {
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Token: signedToken(t, time.Now().Add(-time.Minute)), User: lecturerProfile}
	svc := newTestSessionService(portal)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "thabo@uni.ac", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestSessionLoginWithoutToken(t *testing.T) {
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Shape: gateway.AuthShapeFlat, User: lecturerProfile}
	svc := newTestSessionService(portal)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "thabo@uni.ac", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrMalformedResponse)
}

func TestSessionLoginValidatesLocally(t *testing.T) {
	portal := newFakePortal()
	svc := newTestSessionService(portal)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, portal.total())
}

func TestSessionRegisterWithoutToken(t *testing.T) {
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Shape: gateway.AuthShapeNested, User: lecturerProfile}
	svc := newTestSessionService(portal)

	session, profile, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "thabo.m", Email: "thabo@uni.ac", Password: "secret1", Role: "Lecturer",
	})
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, lecturerProfile, *profile)
}

func TestSessionLogoutNotifiesListeners(t *testing.T) {
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Token: "opaque-token", User: lecturerProfile}
	svc := newTestSessionService(portal)

	var ended []string
	svc.OnSessionEnd(func(id string) { ended = append(ended, id) })

	session, err := svc.Login(context.Background(), dto.LoginRequest{Email: "thabo@uni.ac", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), session.ID))
	assert.Equal(t, []string{session.ID}, ended)

	_, err = svc.Current(context.Background(), session.ID)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestSessionExpireEndsSession(t *testing.T) {
	portal := newFakePortal()
	portal.auth = &gateway.AuthResult{Token: "opaque-token", User: lecturerProfile}
	svc := newTestSessionService(portal)
	views := NewViewService(ViewServiceParams{Gateway: portal, Sessions: svc})
	svc.OnSessionEnd(views.CloseSession)

	session, err := svc.Login(context.Background(), dto.LoginRequest{Email: "thabo@uni.ac", Password: "secret1"})
	require.NoError(t, err)

	portal.setErr("Courses", appErrors.ErrSessionExpired)
	_, err = views.Load(context.Background(), session, KindReports, false)
	require.ErrorIs(t, err, appErrors.ErrSessionExpired)

	_, err = svc.Current(context.Background(), session.ID)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}
