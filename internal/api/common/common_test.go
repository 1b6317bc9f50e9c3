package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		status     int
		wantStatus int
		wantBody   string
	}{
		{
			name:       "encodes body",
			body:       map[string]string{"id": "home"},
			status:     http.StatusCreated,
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":"home"}`,
		},
		{
			name:       "unencodable body answers 500",
			body:       map[string]any{"fn": func() {}},
			status:     http.StatusOK,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			WriteJSON(rr, tt.body, tt.status)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	WriteError(rr, "entry not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"entry not found"}`, rr.Body.String())
}

func TestWriteFieldErrors(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	WriteFieldErrors(rr, "The given data was invalid.", map[string][]string{
		"title": {"The title field is required."},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "The given data was invalid.", body.Error)
	assert.Equal(t, []string{"The title field is required."}, body.Errors["title"])
}
