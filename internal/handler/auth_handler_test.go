package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

type fakeAuthService struct {
	session   *models.Session
	profile   *models.UserProfile
	err       error
	loggedOut string
	lastLogin dto.LoginRequest
}

func (f *fakeAuthService) Login(_ context.Context, req dto.LoginRequest) (*models.Session, error) {
	f.lastLogin = req
	return f.session, f.err
}

func (f *fakeAuthService) Register(context.Context, dto.RegisterRequest) (*models.Session, *models.UserProfile, error) {
	return f.session, f.profile, f.err
}

func (f *fakeAuthService) Logout(_ context.Context, sessionID string) error {
	f.loggedOut = sessionID
	return f.err
}

func authRouter(svc *fakeAuthService) *gin.Engine {
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	authed := r.Group("/auth", withTestSession())
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)
	return r
}

func TestAuthHandlerLogin(t *testing.T) {
	expires := time.Date(2024, 3, 12, 20, 0, 0, 0, time.UTC)
	svc := &fakeAuthService{session: &models.Session{
		ID:        "s-1",
		ExpiresAt: expires,
		User:      models.UserProfile{ID: 9, Username: "prl.admin", Role: models.RolePRL},
	}}
	w := performRequest(authRouter(svc), http.MethodPost, "/auth/login", "", `{"email":"prl@uni.ac","password":"secret"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prl@uni.ac", svc.lastLogin.Email)

	var body dto.SessionResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "s-1", body.SessionID)
	assert.Equal(t, []string{"principal", "reports"}, body.Views)
	require.NotNil(t, body.ExpiresAt)
	assert.True(t, expires.Equal(*body.ExpiresAt))
}

func TestAuthHandlerLoginRejectsMalformedBody(t *testing.T) {
	w := performRequest(authRouter(&fakeAuthService{}), http.MethodPost, "/auth/login", "", `{"email":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestAuthHandlerLoginPropagatesUpstreamError(t *testing.T) {
	svc := &fakeAuthService{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials")}
	w := performRequest(authRouter(svc), http.MethodPost, "/auth/login", "", `{"email":"a@b.c","password":"x"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", decode(t, w).Error.Message)
}

func TestAuthHandlerRegisterWithoutSession(t *testing.T) {
	profile := &models.UserProfile{ID: 4, Username: "new.student", Role: models.RoleStudent}
	w := performRequest(authRouter(&fakeAuthService{profile: profile}), http.MethodPost, "/auth/register", "",
		`{"username":"new.student","email":"n@uni.ac","password":"secret1","role":"Student"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var body dto.SessionResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Empty(t, body.SessionID)
	assert.Nil(t, body.ExpiresAt)
	assert.Equal(t, []string{"student"}, body.Views)
}

func TestAuthHandlerLogoutAndMe(t *testing.T) {
	svc := &fakeAuthService{}
	r := authRouter(svc)

	w := performRequest(r, http.MethodGet, "/auth/me", "lec", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body dto.SessionResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "thabo.m", body.User.Username)

	w = performRequest(r, http.MethodPost, "/auth/logout", "lec", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "lec", svc.loggedOut)

	w = performRequest(r, http.MethodGet, "/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
