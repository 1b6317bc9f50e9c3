// Package authz provides Cedar-based authorization for the entries server.
package authz

import "context"

//go:generate mockgen -destination=mocks/mock_authorizer.go -package=mocks -source=authorizer.go Authorizer

// Authorizer evaluates authorization decisions using Cedar policies.
type Authorizer interface {
	// Authorize checks if the principal can perform the action on the resource.
	Authorize(ctx context.Context, req Request) (Decision, error)
}

// Principal is the acting user as seen by the policies.
type Principal struct {
	ID          string
	Super       bool
	Permissions []string
}

// Request represents an authorization request.
type Request struct {
	Principal Principal

	// Action is the Cedar action name (view, edit, update, create, store, delete, publish).
	Action string

	// ResourceType is the Cedar resource entity type, "Entry" or "Collection".
	ResourceType string

	// ResourceID is the entry id or the collection handle.
	ResourceID string

	// Collection is the handle of the collection the resource belongs to.
	Collection string

	// Author and Published describe entry resources.
	Author    string
	Published bool

	// Permission is the permission string the action requires,
	// e.g. "edit blog entries".
	Permission string

	// OtherAuthorsPermission is additionally required to act on entries
	// authored by someone else.
	OtherAuthorsPermission string
}

// Decision represents the result of an authorization check.
type Decision struct {
	// Allowed indicates whether the request is permitted.
	Allowed bool

	// Reasons provides policy IDs that contributed to the decision.
	Reasons []string
}
