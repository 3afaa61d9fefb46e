package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

// AuthShape names which response layout an auth body used.
type AuthShape string

const (
	AuthShapeFlat   AuthShape = "flat"
	AuthShapeNested AuthShape = "nested"
)

// AuthResult is the canonical outcome of login or registration.
type AuthResult struct {
	Shape AuthShape
	Token string
	User  models.UserProfile
}

var errUnknownShape = errors.New("auth response matches neither the flat nor the nested layout")

// flexID accepts ids encoded as numbers or numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("id %q: %w", s, err)
	}
	*f = flexID(n)
	return nil
}

type wireProfile struct {
	ID          flexID `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	FacultyName string `json:"faculty_name"`
}

func (w wireProfile) profile() (models.UserProfile, error) {
	role := models.ParseRole(w.Role)
	if w.Username == "" {
		return models.UserProfile{}, errors.New("profile has no username")
	}
	if !role.Valid() {
		return models.UserProfile{}, fmt.Errorf("profile has unknown role %q", w.Role)
	}
	return models.UserProfile{
		ID:          int64(w.ID),
		Username:    w.Username,
		Email:       w.Email,
		Role:        role,
		FacultyName: w.FacultyName,
	}, nil
}

// DecodeAuthResponse normalises the two auth response layouts the upstream
// has used: flat {token, id, username, role, ...} and nested
// {token?, user: {...}}. Anything else is MALFORMED_RESPONSE.
func DecodeAuthResponse(body []byte) (*AuthResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, appErrors.WithCause(appErrors.ErrMalformedResponse, err)
	}
	if data, ok := fields["data"]; ok && len(fields) == 1 {
		return DecodeAuthResponse(data)
	}

	var token string
	if raw, ok := fields["token"]; ok {
		if err := json.Unmarshal(raw, &token); err != nil {
			return nil, appErrors.WithCause(appErrors.ErrMalformedResponse, fmt.Errorf("token: %w", err))
		}
	}

	var (
		wire  wireProfile
		shape AuthShape
	)
	switch {
	case isObject(fields["user"]):
		shape = AuthShapeNested
		if err := json.Unmarshal(fields["user"], &wire); err != nil {
			return nil, appErrors.WithCause(appErrors.ErrMalformedResponse, err)
		}
	case fields["username"] != nil && fields["role"] != nil:
		shape = AuthShapeFlat
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, appErrors.WithCause(appErrors.ErrMalformedResponse, err)
		}
	default:
		return nil, appErrors.WithCause(appErrors.ErrMalformedResponse, errUnknownShape)
	}

	profile, err := wire.profile()
	if err != nil {
		return nil, appErrors.WithCause(appErrors.ErrMalformedResponse, err)
	}
	return &AuthResult{Shape: shape, Token: token, User: profile}, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Login exchanges credentials for an upstream token and profile.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", req)
}

// Register creates an upstream account. The result may carry no token.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", req)
}

func (c *Client) authenticate(ctx context.Context, path string, payload interface{}) (*AuthResult, error) {
	var raw json.RawMessage
	if err := c.sendRaw(ctx, http.MethodPost, "", path, payload, &raw); err != nil {
		if errors.Is(err, appErrors.ErrSessionExpired) {
			// a 401 on login means bad credentials, not an expired session
			return nil, appErrors.WithCause(appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials"), err)
		}
		return nil, err
	}
	return DecodeAuthResponse(raw)
}
