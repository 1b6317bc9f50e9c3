package authz

import (
	"fmt"

	"github.com/stacklok/entries-server/internal/service"
)

// Permission returns the permission string an action requires on a
// collection, e.g. "edit blog entries".
func Permission(action service.Action, collection string) string {
	verb := string(action)
	switch action {
	case service.ActionUpdate:
		verb = string(service.ActionEdit)
	case service.ActionStore:
		verb = string(service.ActionCreate)
	}
	return fmt.Sprintf("%s %s entries", verb, collection)
}

// OtherAuthorsPermission returns the permission required to act on entries
// authored by someone else.
func OtherAuthorsPermission(collection string) string {
	return fmt.Sprintf("edit other authors %s entries", collection)
}

// CollectionPermissions lists every permission a collection defines.
func CollectionPermissions(collection string) []string {
	return []string{
		Permission(service.ActionView, collection),
		Permission(service.ActionEdit, collection),
		Permission(service.ActionCreate, collection),
		Permission(service.ActionDelete, collection),
		Permission(service.ActionPublish, collection),
		OtherAuthorsPermission(collection),
	}
}
