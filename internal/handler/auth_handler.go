package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*models.Session, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*models.Session, *models.UserProfile, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler wires HTTP endpoints to the session service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

func sessionResponse(session *models.Session, user models.UserProfile) dto.SessionResponse {
	resp := dto.SessionResponse{User: user, Views: []string{}}
	for _, kind := range service.KindsForRole(user.Role) {
		resp.Views = append(resp.Views, string(kind))
	}
	if session != nil {
		resp.SessionID = session.ID
		expires := session.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}

// Login godoc
// @Summary Sign in
// @Description Authenticates against the upstream API and opens a portal session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "login"))
		return
	}
	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessionResponse(session, session.User))
}

// Register godoc
// @Summary Create an account
// @Description Registers upstream; a session is opened when the upstream issues a token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "registration"))
		return
	}
	session, profile, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sessionResponse(session, *profile))
}

// Logout godoc
// @Summary Sign out
// @Tags Authentication
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Logout(c.Request.Context(), session.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessionResponse(session, session.User))
}
