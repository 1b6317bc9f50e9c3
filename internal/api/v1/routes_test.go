package v1_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/stacklok/entries-server/internal/api/v1"
	"github.com/stacklok/entries-server/internal/auth"
	"github.com/stacklok/entries-server/internal/authz"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/mocks"
)

var editor = &service.ActingUser{ID: "u1", Permissions: []string{"view blog entries"}}

func newRouter(t *testing.T) (*mocks.MockEntryService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockEntryService(ctrl)
	router := v1.Router(svc, v1.WithScopeMapping([]config.ScopeMappingEntry{
		{Scope: "entries:write", Permissions: []string{"edit blog entries"}},
	}))
	return svc, router
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(auth.WithUser(req.Context(), editor))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func applyOptions[T service.ListEntriesOptions | service.EditViewOptions | service.UpdateEntryOptions |
	service.CreateFormOptions | service.StoreEntryOptions | service.DeleteEntryOptions | service.RevisionOptions,
](t *testing.T, opts []service.Option[T]) *T {
	t.Helper()
	o := new(T)
	for _, opt := range opts {
		require.NoError(t, opt(o))
	}
	return o
}

func TestRoutes_RequireUser(t *testing.T) {
	t.Parallel()
	_, router := newRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/collections", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Authentication required", decode(t, rr)["error"])
}

func TestListCollections(t *testing.T) {
	t.Parallel()
	svc, router := newRouter(t)

	svc.EXPECT().ListCollections(gomock.Any(), editor).Return([]*service.CollectionSummary{
		{Handle: "blog", Title: "Blog", EntriesURL: "/cp/collections/blog/entries"},
	}, nil)

	rr := do(router, http.MethodGet, "/collections", "")
	require.Equal(t, http.StatusOK, rr.Code)

	data := decode(t, rr)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "blog", data[0].(map[string]any)["handle"])
}

func TestListEntries_ParsesQuery(t *testing.T) {
	t.Parallel()
	svc, router := newRouter(t)

	filters := base64.StdEncoding.EncodeToString(
		[]byte(`[{"handle":"status","values":{"value":"published"}},{"handle":"tags","values":{"value":["go"]}}]`))

	svc.EXPECT().ListEntries(gomock.Any(), editor, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.ListEntriesOptions]) (*service.EntryListing, error) {
			o := applyOptions(t, opts)
			assert.Equal(t, "blog", o.Collection)
			assert.Equal(t, "fr", o.Site)
			assert.Equal(t, "hello", o.Search)
			assert.Equal(t, "title", o.SortField)
			assert.Equal(t, service.SortDesc, o.SortDirection)
			assert.Equal(t, 2, o.Page)
			assert.Equal(t, 10, o.PerPage)
			require.Len(t, o.Filters, 2)
			assert.Equal(t, "status", o.Filters[0].Handle)
			assert.Equal(t, "published", o.Filters[0].Values["value"])
			return &service.EntryListing{Data: []*service.EntrySummary{{ID: "e1"}}, Meta: service.ListingMeta{Total: 11}}, nil
		})

	rr := do(router, http.MethodGet,
		"/collections/blog/entries?site=fr&search=hello&sort=title&order=DESC&page=2&perPage=10&filters="+filters, "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, float64(11), body["meta"].(map[string]any)["total"])
}

func TestListEntries_DefaultsPerPage(t *testing.T) {
	t.Parallel()
	svc, router := newRouter(t)

	svc.EXPECT().ListEntries(gomock.Any(), editor, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.ListEntriesOptions]) (*service.EntryListing, error) {
			o := applyOptions(t, opts)
			assert.Equal(t, 3, o.Page)
			assert.Equal(t, service.DefaultPerPage, o.PerPage)
			assert.Empty(t, o.SortField)
			return &service.EntryListing{}, nil
		})

	rr := do(router, http.MethodGet, "/collections/blog/entries?page=3", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestListEntries_BadQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"non numeric page", "page=abc"},
		{"zero page", "page=0"},
		{"per page too large", "perPage=501"},
		{"invalid order", "sort=title&order=sideways"},
		{"filters not base64", "filters=not-base64!"},
		{"filters not json", "filters=" + base64.StdEncoding.EncodeToString([]byte("{"))},
		{"filter without handle", "filters=" + base64.StdEncoding.EncodeToString([]byte(`[{"values":{}}]`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, router := newRouter(t)

			rr := do(router, http.MethodGet, "/collections/blog/entries?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestServiceErrors(t *testing.T) {
	t.Parallel()

	validation := schema.NewValidationError("title", "The title field is required.")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "validation",
			err:        fmt.Errorf("invalid values: %w", validation),
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Equal(t, "The given data was invalid.", body["error"])
				errs := body["errors"].(map[string]any)
				assert.Equal(t, []any{"The title field is required."}, errs["title"])
			},
		},
		{
			name:       "denied",
			err:        fmt.Errorf("update: %w", &authz.DeniedError{Action: service.ActionEdit, Permission: "edit blog entries"}),
			wantStatus: http.StatusForbidden,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Equal(t, "forbidden", body["error"])
				details := body["details"].(map[string]any)
				assert.Equal(t, "edit", details["required_action"])
				assert.Contains(t, details["hint"], "entries:write")
			},
		},
		{
			name:       "plain denial",
			err:        service.ErrAuthorizationDenied,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "collection not found",
			err:        fmt.Errorf("%w: news", service.ErrCollectionNotFound),
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Equal(t, "collection not found: news", body["error"])
			},
		},
		{
			name:       "configuration",
			err:        fmt.Errorf("%w: A valid blueprint is required.", service.ErrConfiguration),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Contains(t, body["error"], "A valid blueprint is required.")
			},
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("failed to query entries: connection refused"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				t.Helper()
				assert.Equal(t, "Internal server error", body["error"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, router := newRouter(t)
			svc.EXPECT().ListEntries(gomock.Any(), editor, gomock.Any()).Return(nil, tt.err)

			rr := do(router, http.MethodGet, "/collections/blog/entries", "")
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.check != nil {
				tt.check(t, decode(t, rr))
			}
		})
	}
}

func TestCreateEntryForm(t *testing.T) {
	t.Parallel()
	svc, router := newRouter(t)

	svc.EXPECT().CreateEntryForm(gomock.Any(), editor, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.CreateFormOptions]) (*service.CreateView, error) {
			o := applyOptions(t, opts)
			assert.Equal(t, service.CreateFormOptions{Collection: "pages", Site: "en", Blueprint: "page", Parent: "home"}, *o)
			return &service.CreateView{Title: "Create Page", Locale: "en"}, nil
		})

	rr := do(router, http.MethodGet, "/collections/pages/entries/create/en?blueprint=page&parent=home", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Create Page", decode(t, rr)["title"])
}

func TestStoreEntry(t *testing.T) {
	t.Parallel()
	svc, router := newRouter(t)

	svc.EXPECT().StoreEntry(gomock.Any(), editor, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.StoreEntryOptions]) (*service.StoreResult, error) {
			o := applyOptions(t, opts)
			assert.Equal(t, "blog", o.Collection)
			assert.Equal(t, "en", o.Site)
			assert.Equal(t, "article", o.Blueprint)
			assert.Equal(t, "first draft", o.Message)
			assert.Equal(t, "Hello", o.Values["title"])
			assert.NotContains(t, o.Values, "message")
			return &service.StoreResult{
				Entry:    service.EntryPayload{"id": "e1", "title": "Hello"},
				Redirect: "/cp/collections/blog/entries/e1",
			}, nil
		})

	rr := do(router, http.MethodPost, "/collections/blog/entries/en",
		`{"title":"Hello","slug":"hello","blueprint":"article","message":"first draft"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/cp/collections/blog/entries/e1", rr.Header().Get("Location"))

	body := decode(t, rr)
	assert.Equal(t, "/cp/collections/blog/entries/e1", body["redirect"])
	assert.Equal(t, "e1", body["data"].(map[string]any)["id"])
}

func TestStoreEntry_InvalidBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`not json`, `null`, `[1,2]`} {
		t.Run(body, func(t *testing.T) {
			t.Parallel()
			_, router := newRouter(t)
			rr := do(router, http.MethodPost, "/collections/blog/entries/en", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestEditEntry(t *testing.T) {
	t.Parallel()

	t.Run("view", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PrepareEditView(gomock.Any(), editor, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.EditViewOptions]) (*service.EditView, error) {
				o := applyOptions(t, opts)
				assert.Equal(t, service.EditViewOptions{Collection: "blog", EntryID: "e1"}, *o)
				return &service.EditView{Title: "Hello", Reference: "entry::e1"}, nil
			})

		rr := do(router, http.MethodGet, "/collections/blog/entries/e1", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "entry::e1", decode(t, rr)["reference"])
	})

	t.Run("structured redirect", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PrepareEditView(gomock.Any(), editor, gomock.Any()).
			Return(&service.EditView{Redirect: "/cp/structures/pages/entries/e1"}, nil)

		rr := do(router, http.MethodGet, "/collections/pages/entries/e1", "")
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/cp/structures/pages/entries/e1", rr.Header().Get("Location"))
	})

	t.Run("via structure", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PrepareEditView(gomock.Any(), editor, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.EditViewOptions]) (*service.EditView, error) {
				o := applyOptions(t, opts)
				assert.True(t, o.ViaStructure)
				return &service.EditView{Title: "About"}, nil
			})

		rr := do(router, http.MethodGet, "/structures/pages/entries/e1", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PrepareEditView(gomock.Any(), editor, gomock.Any()).
			Return(nil, fmt.Errorf("%w: e9", service.ErrEntryNotFound))

		rr := do(router, http.MethodGet, "/collections/blog/entries/e9", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestUpdateEntry(t *testing.T) {
	t.Parallel()
	svc, router := newRouter(t)

	svc.EXPECT().UpdateEntry(gomock.Any(), editor, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.UpdateEntryOptions]) (service.EntryPayload, error) {
			o := applyOptions(t, opts)
			assert.Equal(t, "blog", o.Collection)
			assert.Equal(t, "e1", o.EntryID)
			assert.Equal(t, []string{"title"}, o.LocalizedFields)
			assert.Equal(t, map[string]any{"title": "Bonjour", "slug": "bonjour"}, o.Values)
			return service.EntryPayload{"id": "e1", "title": "Bonjour"}, nil
		})

	rr := do(router, http.MethodPatch, "/collections/blog/entries/e1",
		`{"title":"Bonjour","slug":"bonjour","_localized":["title"]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bonjour", decode(t, rr)["data"].(map[string]any)["title"])
}

func TestUpdateEntry_InvalidLocalized(t *testing.T) {
	t.Parallel()
	_, router := newRouter(t)

	rr := do(router, http.MethodPatch, "/collections/blog/entries/e1", `{"title":"x","_localized":"title"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", fmt.Errorf("%w: e1", service.ErrEntryNotFound), http.StatusNotFound},
		{"denied", &authz.DeniedError{Action: service.ActionDelete, Permission: "delete blog entries"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, router := newRouter(t)
			svc.EXPECT().DeleteEntry(gomock.Any(), editor, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.DeleteEntryOptions]) error {
					assert.Equal(t, "e1", applyOptions(t, opts).EntryID)
					return tt.err
				})

			rr := do(router, http.MethodDelete, "/entries/e1", "")
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRevisionRoutes(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().ListRevisions(gomock.Any(), editor, gomock.Any()).
			Return([]*service.Revision{{ID: "r2"}, {ID: "r1"}}, nil)

		rr := do(router, http.MethodGet, "/entries/e1/revisions", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode(t, rr)["data"], 2)
	})

	t.Run("create with message", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().CreateRevision(gomock.Any(), editor, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.RevisionOptions]) (*service.Revision, error) {
				o := applyOptions(t, opts)
				assert.Equal(t, service.RevisionOptions{EntryID: "e1", Message: "checkpoint"}, *o)
				return &service.Revision{ID: "r3", Message: "checkpoint"}, nil
			})

		rr := do(router, http.MethodPost, "/entries/e1/revisions", `{"message":"checkpoint"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("publish without body", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PublishEntry(gomock.Any(), editor, gomock.Any()).
			Return(service.EntryPayload{"id": "e1", "published": true}, nil)

		rr := do(router, http.MethodPost, "/entries/e1/publish", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("publish with revisions disabled", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PublishEntry(gomock.Any(), editor, gomock.Any()).Return(nil, service.ErrRevisionsDisabled)

		rr := do(router, http.MethodPost, "/entries/e1/publish", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("publish with slug taken", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().PublishEntry(gomock.Any(), editor, gomock.Any()).
			Return(nil, schema.NewValidationError("slug", "The slug has already been taken."))

		rr := do(router, http.MethodPost, "/entries/e1/publish", "")
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		errs := decode(t, rr)["errors"].(map[string]any)
		assert.Contains(t, errs, "slug")
	})

	t.Run("unpublish with message", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().UnpublishEntry(gomock.Any(), editor, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.RevisionOptions]) (service.EntryPayload, error) {
				assert.Equal(t, service.RevisionOptions{EntryID: "e1", Message: "offline"}, *applyOptions(t, opts))
				return service.EntryPayload{"id": "e1", "published": false}, nil
			})

		rr := do(router, http.MethodPost, "/entries/e1/unpublish", `{"message":"offline"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, false, decode(t, rr)["data"].(map[string]any)["published"])
	})

	t.Run("unpublish denied", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().UnpublishEntry(gomock.Any(), editor, gomock.Any()).Return(nil, service.ErrAuthorizationDenied)

		rr := do(router, http.MethodPost, "/entries/e1/unpublish", "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("restore", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().RestoreRevision(gomock.Any(), editor, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *service.ActingUser, opts ...service.Option[service.RevisionOptions]) (service.EntryPayload, error) {
				assert.Equal(t, "r1", applyOptions(t, opts).RevisionID)
				return service.EntryPayload{"id": "e1"}, nil
			})

		rr := do(router, http.MethodPost, "/entries/e1/restore", `{"revision":"r1"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("restore requires a revision", func(t *testing.T) {
		t.Parallel()
		_, router := newRouter(t)

		rr := do(router, http.MethodPost, "/entries/e1/restore", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing revision", func(t *testing.T) {
		t.Parallel()
		svc, router := newRouter(t)
		svc.EXPECT().RestoreRevision(gomock.Any(), editor, gomock.Any()).
			Return(nil, fmt.Errorf("%w: r9", service.ErrRevisionNotFound))

		rr := do(router, http.MethodPost, "/entries/e1/restore", `{"revision":"r9"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
