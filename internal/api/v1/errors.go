package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/entries-server/internal/api/common"
	"github.com/stacklok/entries-server/internal/authz"
	"github.com/stacklok/entries-server/internal/service"
)

const validationMessage = "The given data was invalid."

// writeServiceError maps an EntryService error to its HTTP answer. Unknown
// errors are logged and answered with a generic 500.
func (routes *Routes) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		common.WriteFieldErrors(w, validationMessage, validationErr.Fields)
		return
	}

	var denied *authz.DeniedError
	switch {
	case errors.As(err, &denied):
		authz.WriteForbidden(w, r, denied, routes.scopeMapping)
	case errors.Is(err, service.ErrAuthorizationDenied):
		common.WriteError(w, "This action is unauthorized.", http.StatusForbidden)
	case errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrSiteNotFound),
		errors.Is(err, service.ErrRevisionNotFound),
		errors.Is(err, service.ErrBlueprintNotFound):
		common.WriteError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrRevisionsDisabled):
		common.WriteError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrConfiguration):
		slog.ErrorContext(ctx, "Collection configuration error",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(ctx))
		common.WriteError(w, err.Error(), http.StatusInternalServerError)
	default:
		slog.ErrorContext(ctx, "Entry operation failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(ctx))
		common.WriteError(w, "Internal server error", http.StatusInternalServerError)
	}
}
