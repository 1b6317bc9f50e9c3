package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveParam routes path through /entries/{entry} and returns what PathParam saw
func serveParam(t *testing.T, path string) (string, error) {
	t.Helper()

	var (
		got    string
		gotErr error
		called bool
	)
	router := chi.NewRouter()
	router.Get("/entries/{entry}", func(_ http.ResponseWriter, r *http.Request) {
		called = true
		got, gotErr = PathParam(r, "entry")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	require.True(t, called, "route not matched for %s", path)
	return got, gotErr
}

func TestPathParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{name: "uuid", path: "/entries/3f1c2a7e-8f5b-4c1e-9a57-1b2c3d4e5f60", want: "3f1c2a7e-8f5b-4c1e-9a57-1b2c3d4e5f60"},
		{name: "handle with dots and underscores", path: "/entries/home_page.v2", want: "home_page.v2"},
		{name: "encoded at", path: "/entries/post%40draft", want: "post@draft"},
		{name: "encoded space", path: "/entries/my%20post", wantErr: "entry cannot contain whitespace"},
		{name: "encoded tab", path: "/entries/a%09b", wantErr: "entry cannot contain whitespace"},
		{name: "encoded slash", path: "/entries/a%2Fb", wantErr: "entry cannot contain '/'"},
		{name: "blank", path: "/entries/%20%20", wantErr: "entry cannot be empty"},
		{name: "too long", path: "/entries/" + strings.Repeat("a", 256), wantErr: "entry exceeds 255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := serveParam(t, tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathParam_Missing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	_, err := PathParam(req, "entry")
	require.Error(t, err)
	assert.Equal(t, "entry cannot be empty", err.Error())
}

func TestPathParams(t *testing.T) {
	t.Parallel()

	var (
		got []string
		err error
	)
	router := chi.NewRouter()
	router.Get("/collections/{collection}/entries/{site}", func(_ http.ResponseWriter, r *http.Request) {
		got, err = PathParams(r, "collection", "site")
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/collections/blog/entries/french", nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "french"}, got)
}
