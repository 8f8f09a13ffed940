package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeRouteResolvesPathValues(t *testing.T) {
	mux := http.NewServeMux()

	var gotAssignment, gotStudent string
	mux.HandleFunc("POST "+GradeRoute, func(w http.ResponseWriter, r *http.Request) {
		gotAssignment = r.PathValue("assignment_id")
		gotStudent = r.PathValue("student_id")
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/hw-1/submissions/stu-7/grade", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "hw-1", gotAssignment)
	assert.Equal(t, "stu-7", gotStudent)
}

func TestSubmissionsRouteIsGradeRoutePrefix(t *testing.T) {
	// The grade endpoint nests under the submissions collection, so the
	// metric labels derived from these patterns stay consistent.
	assert.Equal(t, SubmissionsRoute+"/{student_id}/grade", GradeRoute)
}
