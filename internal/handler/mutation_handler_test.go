package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func TestMutationHandlerRoutes(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		target  string
		session string
		body    string
		status  int
		call    string
		id      int64
	}{
		{"submit report", http.MethodPost, "/views/reports/reports", "lec", `{"course_id":1,"week":2,"topic":"Trees","date":"2024-03-12","actual_students":30,"total_students":40}`, http.StatusCreated, "submit_report", 0},
		{"update report", http.MethodPut, "/views/reports/reports/5", "lec", `{"course_id":1,"week":2,"topic":"Graphs","date":"2024-03-12"}`, http.StatusOK, "update_report", 5},
		{"delete report", http.MethodDelete, "/views/reports/reports/5", "lec", "", http.StatusOK, "delete_report", 5},
		{"review report", http.MethodPut, "/views/principal/reports/6/review", "prl", `{"status":"approved","feedback":"good"}`, http.StatusOK, "review_report", 6},
		{"bulk review", http.MethodPost, "/views/principal/reports/bulk-review", "prl", `{"report_ids":[1,2],"status":"rejected"}`, http.StatusOK, "bulk_review", 0},
		{"add rating", http.MethodPost, "/views/student/ratings", "stu", `{"course_id":1,"rating":4,"rating_type":"course"}`, http.StatusCreated, "add_rating", 0},
		{"schedule class", http.MethodPost, "/views/principal/classes", "prl", `{"course_id":1,"date":"2024-03-20","time":"09:00","room":"B12"}`, http.StatusCreated, "schedule_class", 0},
		{"delete class", http.MethodDelete, "/views/principal/classes/3", "prl", "", http.StatusOK, "delete_class", 3},
		{"add course", http.MethodPost, "/views/principal/courses", "prl", `{"name":"Compilers","code":"CS401"}`, http.StatusCreated, "add_course", 0},
		{"update course", http.MethodPut, "/views/principal/courses/8", "prl", `{"name":"Compilers II","code":"CS402"}`, http.StatusOK, "update_course", 8},
		{"delete course", http.MethodDelete, "/views/principal/courses/8", "prl", "", http.StatusOK, "delete_course", 8},
		{"add lecture", http.MethodPost, "/views/reports/lectures", "lec", `{"course_id":1,"title":"Week 3 slides"}`, http.StatusCreated, "add_lecture", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			views := &fakeViews{}
			var body interface{}
			if tc.body != "" {
				body = tc.body
			}
			w := performRequest(viewRouter(views), tc.method, tc.target, tc.session, body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, []string{tc.call}, views.calls)
			assert.Equal(t, tc.id, views.id)
			assert.Contains(t, string(decode(t, w).Data), `"generation":2`)
		})
	}
}

func TestMutationHandlerBindsPayload(t *testing.T) {
	views := &fakeViews{}
	w := performRequest(viewRouter(views), http.MethodPut, "/views/principal/reports/6/review", "prl", `{"status":"rejected","feedback":"incomplete"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req, ok := views.req.(dto.ReviewRequest)
	require.True(t, ok)
	assert.Equal(t, models.ReportStatus("rejected"), req.Status)
	assert.Equal(t, "incomplete", req.Feedback)
	assert.Equal(t, service.KindPrincipal, views.kind)
}

func TestMutationHandlerRejectsBadInput(t *testing.T) {
	views := &fakeViews{}
	r := viewRouter(views)

	w := performRequest(r, http.MethodPut, "/views/reports/reports/abc", "lec", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodDelete, "/views/reports/reports/0", "lec", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodPost, "/views/reports/reports", "lec", `{"course_id":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)

	assert.Empty(t, views.calls)
}

func TestMutationHandlerMapsServiceErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"missing token":   {appErrors.ErrMissingToken, http.StatusPreconditionFailed},
		"not allowed":     {appErrors.ErrForbidden, http.StatusForbidden},
		"session expired": {appErrors.ErrSessionExpired, http.StatusUnauthorized},
		"upstream":        {appErrors.ErrUpstream, http.StatusBadGateway},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			views := &fakeViews{err: tc.err}
			w := performRequest(viewRouter(views), http.MethodPost, "/views/student/ratings", "stu", `{"course_id":1,"rating":5,"rating_type":"self"}`)
			require.Equal(t, tc.status, w.Code)
			assert.Nil(t, decode(t, w).Data)
		})
	}
}
