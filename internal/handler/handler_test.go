package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/noah-isme/faculty-report-portal/internal/middleware"
	"github.com/noah-isme/faculty-report-portal/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSessions = map[string]*models.Session{
	"stu": {ID: "stu", Token: "t-stu", User: models.UserProfile{ID: 3, Username: "naledi.s", Role: models.RoleStudent}},
	"lec": {ID: "lec", Token: "t-lec", User: models.UserProfile{ID: 7, Username: "thabo.m", Role: models.RoleLecturer}},
	"prl": {ID: "prl", Token: "t-prl", User: models.UserProfile{ID: 9, Username: "prl.admin", Role: models.RolePRL}},
}

// withTestSession stands in for the session middleware, keyed by X-Test-Session.
func withTestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session, ok := testSessions[c.GetHeader("X-Test-Session")]; ok {
			c.Set(internalmiddleware.ContextSessionKey, session)
		}
		c.Next()
	}
}

func performRequest(r http.Handler, method, target, session string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch v := body.(type) {
		case string:
			reader = bytes.NewBufferString(v)
		default:
			raw, _ := json.Marshal(v)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Test-Session", session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
