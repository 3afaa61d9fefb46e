package dto

import (
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// LoginRequest carries credentials forwarded to the upstream API.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries a new account forwarded to the upstream API.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=Student Lecturer PRL ProgramLeader FMG"`
	FacultyName string `json:"faculty_name,omitempty"`
}

// SessionResponse is returned after login or registration.
type SessionResponse struct {
	SessionID string             `json:"sessionId,omitempty"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
	User      models.UserProfile `json:"user"`
	Views     []string           `json:"views"`
}
