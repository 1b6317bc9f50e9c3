package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/entries-server/internal/service"
)

// DeniedError describes a denied authorization check.
type DeniedError struct {
	Action     service.Action
	Permission string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s requires %q", service.ErrAuthorizationDenied, e.Action, e.Permission)
}

// Unwrap returns ErrAuthorizationDenied
func (*DeniedError) Unwrap() error {
	return service.ErrAuthorizationDenied
}

// Gate implements service.AuthorizationGate on top of an Authorizer.
type Gate struct {
	authorizer Authorizer
}

var _ service.AuthorizationGate = (*Gate)(nil)

// NewGate creates a gate evaluating requests with the authorizer.
func NewGate(authorizer Authorizer) *Gate {
	return &Gate{authorizer: authorizer}
}

// NewCedarGate creates a gate backed by Cedar policies. Nil policies select
// the built-in ones.
func NewCedarGate(policies []byte) (*Gate, error) {
	authorizer, err := NewCedarAuthorizer(policies)
	if err != nil {
		return nil, err
	}
	return NewGate(authorizer), nil
}

// Authorize returns a *DeniedError when the action is not permitted.
func (g *Gate) Authorize(
	ctx context.Context,
	user *service.ActingUser,
	action service.Action,
	collection *service.Collection,
	entry *service.Entry,
) error {
	req := buildRequest(user, action, collection, entry)

	decision, err := g.authorizer.Authorize(ctx, req)
	if err != nil {
		return fmt.Errorf("authorization evaluation failed: %w", err)
	}
	if !decision.Allowed {
		slog.InfoContext(ctx, "Authorization denied",
			"action", action,
			"user", req.Principal.ID,
			"collection", req.Collection,
			"resource", req.ResourceID,
			"permission", req.Permission,
		)
		return &DeniedError{Action: action, Permission: req.Permission}
	}
	return nil
}

// Allows reports whether the action is permitted. Evaluation errors deny.
func (g *Gate) Allows(
	ctx context.Context,
	user *service.ActingUser,
	action service.Action,
	collection *service.Collection,
	entry *service.Entry,
) bool {
	err := g.Authorize(ctx, user, action, collection, entry)
	if err != nil && !errors.Is(err, service.ErrAuthorizationDenied) {
		slog.ErrorContext(ctx, "Authorization evaluation failed", "action", action, "error", err)
	}
	return err == nil
}

func buildRequest(
	user *service.ActingUser,
	action service.Action,
	collection *service.Collection,
	entry *service.Entry,
) Request {
	var handle string
	if collection != nil {
		handle = collection.Handle
	}

	req := Request{
		Action:                 string(action),
		ResourceType:           ResourceCollection,
		ResourceID:             handle,
		Collection:             handle,
		Permission:             Permission(action, handle),
		OtherAuthorsPermission: OtherAuthorsPermission(handle),
	}
	if user != nil {
		req.Principal = Principal{ID: user.ID, Super: user.Super, Permissions: user.Permissions}
	}
	if entry != nil {
		req.ResourceType = ResourceEntry
		req.ResourceID = entry.ID
		req.Author = entry.Author
		req.Published = entry.Published
		if handle == "" {
			req.Collection = entry.Collection
			req.Permission = Permission(action, entry.Collection)
			req.OtherAuthorsPermission = OtherAuthorsPermission(entry.Collection)
		}
	}
	return req
}
