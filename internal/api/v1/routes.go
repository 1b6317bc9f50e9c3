// Package v1 provides the entries API v1 endpoints.
package v1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/entries-server/internal/api/common"
	"github.com/stacklok/entries-server/internal/auth"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/service"
)

// maxBodySize caps the size of submitted entry values
const maxBodySize = 4 << 20

// Routes handles HTTP requests for the entries API v1 endpoints.
type Routes struct {
	service      service.EntryService
	scopeMapping []config.ScopeMappingEntry
}

// RouterOption configures the v1 router
type RouterOption func(*Routes)

// WithScopeMapping sets the scope mapping used to hint at missing scopes in 403 answers
func WithScopeMapping(mapping []config.ScopeMappingEntry) RouterOption {
	return func(routes *Routes) {
		routes.scopeMapping = mapping
	}
}

// NewRoutes creates a new Routes instance with the given service.
func NewRoutes(svc service.EntryService, opts ...RouterOption) *Routes {
	routes := &Routes{service: svc}
	for _, opt := range opts {
		opt(routes)
	}
	return routes
}

// Router creates and configures the HTTP router for the entries API v1 endpoints.
func Router(svc service.EntryService, opts ...RouterOption) http.Handler {
	routes := NewRoutes(svc, opts...)

	r := chi.NewRouter()

	r.Get("/collections", routes.listCollections)
	r.Route("/collections/{collection}/entries", func(r chi.Router) {
		r.Get("/", routes.listEntries)
		r.Get("/create/{site}", routes.createEntryForm)
		r.Post("/{site}", routes.storeEntry)
		r.Get("/{entry}", routes.editEntry)
		r.Patch("/{entry}", routes.updateEntry)
	})
	r.Get("/structures/{collection}/entries/{entry}", routes.editStructureEntry)

	r.Route("/entries/{entry}", func(r chi.Router) {
		r.Delete("/", routes.deleteEntry)
		r.Get("/revisions", routes.listRevisions)
		r.Post("/revisions", routes.createRevision)
		r.Post("/publish", routes.publishEntry)
		r.Post("/unpublish", routes.unpublishEntry)
		r.Post("/restore", routes.restoreRevision)
	})

	return r
}

// actingUser returns the user attached by the auth middleware, answering 401
// when there is none.
func actingUser(w http.ResponseWriter, r *http.Request) (*service.ActingUser, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// urlParams extracts and validates the named URL parameters, answering 400
// when one is invalid.
func urlParams(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	out, err := common.PathParams(r, names...)
	if err != nil {
		common.WriteError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return out, true
}

// listCollections handles GET /api/v1/collections
func (routes *Routes) listCollections(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	collections, err := routes.service.ListCollections(r.Context(), user)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": collections}, http.StatusOK)
}

// listEntries handles GET /api/v1/collections/{collection}/entries
func (routes *Routes) listEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "collection")
	if !ok {
		return
	}

	opts, err := listOptions(r)
	if err != nil {
		common.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts = append([]service.Option[service.ListEntriesOptions]{
		service.WithCollection[service.ListEntriesOptions](params[0]),
	}, opts...)

	listing, err := routes.service.ListEntries(r.Context(), user, opts...)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, listing, http.StatusOK)
}

// listOptions parses the listing query parameters
func listOptions(r *http.Request) ([]service.Option[service.ListEntriesOptions], error) {
	query := r.URL.Query()
	opts := []service.Option[service.ListEntriesOptions]{}

	if site := query.Get("site"); site != "" {
		opts = append(opts, service.WithSite[service.ListEntriesOptions](site))
	}
	if search := strings.TrimSpace(query.Get("search")); search != "" {
		opts = append(opts, service.WithSearch(search))
	}
	if sort := query.Get("sort"); sort != "" {
		order := strings.ToLower(query.Get("order"))
		if order != "" && order != service.SortAsc && order != service.SortDesc {
			return nil, fmt.Errorf("invalid order parameter: must be asc or desc")
		}
		opts = append(opts, service.WithSort(sort, order))
	}

	pageStr, perPageStr := query.Get("page"), query.Get("perPage")
	if pageStr != "" || perPageStr != "" {
		page, perPage := 1, service.DefaultPerPage
		var err error
		if pageStr != "" {
			if page, err = strconv.Atoi(pageStr); err != nil || page < 1 {
				return nil, fmt.Errorf("invalid page parameter: must be a positive integer")
			}
		}
		if perPageStr != "" {
			if perPage, err = strconv.Atoi(perPageStr); err != nil || perPage < 1 || perPage > service.MaxPerPage {
				return nil, fmt.Errorf("invalid perPage parameter: must be between 1 and %d", service.MaxPerPage)
			}
		}
		opts = append(opts, service.WithPage(page, perPage))
	}

	if raw := query.Get("filters"); raw != "" {
		filters, err := decodeFilters(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithFilters(filters...))
	}
	return opts, nil
}

// decodeFilters decodes the base64 encoded JSON array of filter requests
func decodeFilters(raw string) ([]service.FilterRequest, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		if decoded, err = base64.URLEncoding.DecodeString(raw); err != nil {
			return nil, fmt.Errorf("invalid filters parameter: must be base64 encoded JSON")
		}
	}
	var filters []service.FilterRequest
	if err := json.Unmarshal(decoded, &filters); err != nil {
		return nil, fmt.Errorf("invalid filters parameter: %v", err)
	}
	for _, f := range filters {
		if f.Handle == "" {
			return nil, fmt.Errorf("invalid filters parameter: every filter needs a handle")
		}
	}
	return filters, nil
}

// createEntryForm handles GET /api/v1/collections/{collection}/entries/create/{site}
func (routes *Routes) createEntryForm(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "collection", "site")
	if !ok {
		return
	}

	opts := []service.Option[service.CreateFormOptions]{
		service.WithCollection[service.CreateFormOptions](params[0]),
		service.WithSite[service.CreateFormOptions](params[1]),
	}
	if blueprint := r.URL.Query().Get("blueprint"); blueprint != "" {
		opts = append(opts, service.WithBlueprint[service.CreateFormOptions](blueprint))
	}
	if parent := r.URL.Query().Get("parent"); parent != "" {
		opts = append(opts, service.WithParent(parent))
	}

	view, err := routes.service.CreateEntryForm(r.Context(), user, opts...)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, view, http.StatusOK)
}

// storeEntry handles POST /api/v1/collections/{collection}/entries/{site}
func (routes *Routes) storeEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "collection", "site")
	if !ok {
		return
	}

	body, ok := readValues(w, r)
	if !ok {
		return
	}
	message := popString(body.values, "message")

	opts := []service.Option[service.StoreEntryOptions]{
		service.WithCollection[service.StoreEntryOptions](params[0]),
		service.WithSite[service.StoreEntryOptions](params[1]),
		service.WithValues[service.StoreEntryOptions](body.values),
		service.WithMessage[service.StoreEntryOptions](message),
	}
	if blueprint, _ := body.values["blueprint"].(string); blueprint != "" {
		opts = append(opts, service.WithBlueprint[service.StoreEntryOptions](blueprint))
	}

	result, err := routes.service.StoreEntry(r.Context(), user, opts...)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", result.Redirect)
	common.WriteJSON(w, result, http.StatusCreated)
}

// editEntry handles GET /api/v1/collections/{collection}/entries/{entry}
func (routes *Routes) editEntry(w http.ResponseWriter, r *http.Request) {
	routes.handleEdit(w, r, false)
}

// editStructureEntry handles GET /api/v1/structures/{collection}/entries/{entry}
func (routes *Routes) editStructureEntry(w http.ResponseWriter, r *http.Request) {
	routes.handleEdit(w, r, true)
}

func (routes *Routes) handleEdit(w http.ResponseWriter, r *http.Request, viaStructure bool) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "collection", "entry")
	if !ok {
		return
	}

	opts := []service.Option[service.EditViewOptions]{
		service.WithCollection[service.EditViewOptions](params[0]),
		service.WithEntryID[service.EditViewOptions](params[1]),
	}
	if viaStructure {
		opts = append(opts, service.WithViaStructure())
	}

	view, err := routes.service.PrepareEditView(r.Context(), user, opts...)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	if view.Redirect != "" {
		http.Redirect(w, r, view.Redirect, http.StatusFound)
		return
	}
	common.WriteJSON(w, view, http.StatusOK)
}

// updateEntry handles PATCH /api/v1/collections/{collection}/entries/{entry}
func (routes *Routes) updateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "collection", "entry")
	if !ok {
		return
	}

	body, ok := readValues(w, r)
	if !ok {
		return
	}

	payload, err := routes.service.UpdateEntry(r.Context(), user,
		service.WithCollection[service.UpdateEntryOptions](params[0]),
		service.WithEntryID[service.UpdateEntryOptions](params[1]),
		service.WithValues[service.UpdateEntryOptions](body.values),
		service.WithLocalizedFields(body.localized),
	)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": payload}, http.StatusOK)
}

// deleteEntry handles DELETE /api/v1/entries/{entry}
func (routes *Routes) deleteEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "entry")
	if !ok {
		return
	}

	if err := routes.service.DeleteEntry(r.Context(), user,
		service.WithEntryID[service.DeleteEntryOptions](params[0])); err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listRevisions handles GET /api/v1/entries/{entry}/revisions
func (routes *Routes) listRevisions(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "entry")
	if !ok {
		return
	}

	revisions, err := routes.service.ListRevisions(r.Context(), user,
		service.WithEntryID[service.RevisionOptions](params[0]))
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": revisions}, http.StatusOK)
}

// revisionRequest is the optional body of the revision endpoints
type revisionRequest struct {
	Message  string `json:"message"`
	Revision string `json:"revision"`
}

func readRevisionRequest(w http.ResponseWriter, r *http.Request) (*revisionRequest, bool) {
	req := &revisionRequest{}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		common.WriteError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return req, true
	}
	if err := json.Unmarshal(raw, req); err != nil {
		common.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return req, true
}

// createRevision handles POST /api/v1/entries/{entry}/revisions
func (routes *Routes) createRevision(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "entry")
	if !ok {
		return
	}
	req, ok := readRevisionRequest(w, r)
	if !ok {
		return
	}

	revision, err := routes.service.CreateRevision(r.Context(), user,
		service.WithEntryID[service.RevisionOptions](params[0]),
		service.WithMessage[service.RevisionOptions](req.Message))
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": revision}, http.StatusCreated)
}

// publishEntry handles POST /api/v1/entries/{entry}/publish
func (routes *Routes) publishEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "entry")
	if !ok {
		return
	}
	req, ok := readRevisionRequest(w, r)
	if !ok {
		return
	}

	payload, err := routes.service.PublishEntry(r.Context(), user,
		service.WithEntryID[service.RevisionOptions](params[0]),
		service.WithMessage[service.RevisionOptions](req.Message))
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": payload}, http.StatusOK)
}

// unpublishEntry handles POST /api/v1/entries/{entry}/unpublish
func (routes *Routes) unpublishEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "entry")
	if !ok {
		return
	}
	req, ok := readRevisionRequest(w, r)
	if !ok {
		return
	}

	payload, err := routes.service.UnpublishEntry(r.Context(), user,
		service.WithEntryID[service.RevisionOptions](params[0]),
		service.WithMessage[service.RevisionOptions](req.Message))
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": payload}, http.StatusOK)
}

// restoreRevision handles POST /api/v1/entries/{entry}/restore
func (routes *Routes) restoreRevision(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	params, ok := urlParams(w, r, "entry")
	if !ok {
		return
	}
	req, ok := readRevisionRequest(w, r)
	if !ok {
		return
	}
	if req.Revision == "" {
		common.WriteError(w, "revision is required", http.StatusBadRequest)
		return
	}

	payload, err := routes.service.RestoreRevision(r.Context(), user,
		service.WithEntryID[service.RevisionOptions](params[0]),
		service.WithRevisionID(req.Revision),
		service.WithMessage[service.RevisionOptions](req.Message))
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}
	common.WriteJSON(w, map[string]any{"data": payload}, http.StatusOK)
}

// submittedValues are the entry values of a store or update request
type submittedValues struct {
	values    map[string]any
	localized []string
}

// readValues decodes a JSON object of submitted values. The reserved
// _localized key lists the fields a localization overrides.
func readValues(w http.ResponseWriter, r *http.Request) (*submittedValues, bool) {
	var values map[string]any
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := decoder.Decode(&values); err != nil {
		common.WriteError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if values == nil {
		common.WriteError(w, "Invalid request body: expected a JSON object", http.StatusBadRequest)
		return nil, false
	}

	out := &submittedValues{values: values}
	if raw, ok := values["_localized"]; ok {
		delete(values, "_localized")
		list, ok := raw.([]any)
		if !ok {
			common.WriteError(w, "Invalid request body: _localized must be a list of fields", http.StatusBadRequest)
			return nil, false
		}
		for _, item := range list {
			field, ok := item.(string)
			if !ok {
				common.WriteError(w, "Invalid request body: _localized must be a list of fields", http.StatusBadRequest)
				return nil, false
			}
			out.localized = append(out.localized, field)
		}
	}
	return out, true
}

// popString removes a string value from the map and returns it
func popString(values map[string]any, key string) string {
	s, _ := values[key].(string)
	delete(values, key)
	return s
}
