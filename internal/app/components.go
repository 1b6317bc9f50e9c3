package app

import (
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/factory"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// EntryService coordinates the entry lifecycle
	EntryService service.EntryService

	// Stores back the entry service
	Stores *factory.Stores
}
