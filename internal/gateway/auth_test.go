package gateway

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func TestDecodeAuthResponseFlatShape(t *testing.T) {
	result, err := DecodeAuthResponse([]byte(`{"token":"abc","id":5,"username":"thabo","role":"Lecturer","email":"t@uni.ac"}`))
	require.NoError(t, err)
	assert.Equal(t, AuthShapeFlat, result.Shape)
	assert.Equal(t, "abc", result.Token)
	assert.Equal(t, models.UserProfile{ID: 5, Username: "thabo", Email: "t@uni.ac", Role: models.RoleLecturer}, result.User)
}

func TestDecodeAuthResponseNestedShape(t *testing.T) {
	result, err := DecodeAuthResponse([]byte(`{"token":"abc","user":{"id":"9","username":"naledi","role":"Program Leader","faculty_name":"FICT"}}`))
	require.NoError(t, err)
	assert.Equal(t, AuthShapeNested, result.Shape)
	assert.Equal(t, int64(9), result.User.ID)
	assert.Equal(t, models.RoleProgramLeader, result.User.Role)
	assert.Equal(t, "FICT", result.User.FacultyName)
}

func TestDecodeAuthResponseNestedWithoutToken(t *testing.T) {
	result, err := DecodeAuthResponse([]byte(`{"message":"registered","user":{"id":2,"username":"sipho","role":"Student"}}`))
	require.NoError(t, err)
	assert.Empty(t, result.Token)
	assert.Equal(t, models.RoleStudent, result.User.Role)
}

func TestDecodeAuthResponseRejectsUnknownShapes(t *testing.T) {
	for _, body := range []string{
		`{"token":"abc"}`,
		`{"user":"thabo"}`,
		`{"token":"abc","user":{"id":1,"username":"x","role":"Janitor"}}`,
		`{"token":42,"username":"x","role":"Student"}`,
		`[]`,
		``,
	} {
		_, err := DecodeAuthResponse([]byte(body))
		require.ErrorIs(t, err, appErrors.ErrMalformedResponse, body)
	}
}

func TestLoginMapsUnauthorizedToInvalidCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Login(context.Background(), dto.LoginRequest{Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestLoginDecodesWrappedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"token":"t1","user":{"id":1,"username":"prl","role":"PRL"}}}`))
	})

	result, err := client.Login(context.Background(), dto.LoginRequest{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "t1", result.Token)
	assert.Equal(t, models.RolePRL, result.User.Role)
}
