package authz

import (
	"context"
	"fmt"
	"log/slog"

	cedar "github.com/cedar-policy/cedar-go"
)

const cedarNamespace = "Entries"

// Resource entity types
const (
	ResourceEntry      = "Entry"
	ResourceCollection = "Collection"
)

type cedarAuthorizer struct {
	policySet *cedar.PolicySet
}

var _ Authorizer = (*cedarAuthorizer)(nil)

// NewCedarAuthorizer creates a new Cedar-based authorizer.
// If policyBytes is nil, built-in default policies are used.
func NewCedarAuthorizer(policyBytes []byte) (*cedarAuthorizer, error) {
	if policyBytes == nil {
		policyBytes = []byte(defaultPolicies)
	}

	ps, err := cedar.NewPolicySetFromBytes("policies.cedar", policyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Cedar policies: %w", err)
	}

	return &cedarAuthorizer{policySet: ps}, nil
}

// Authorize evaluates the request against the policy set.
func (a *cedarAuthorizer) Authorize(ctx context.Context, req Request) (Decision, error) {
	principalID := req.Principal.ID
	if principalID == "" {
		principalID = "anonymous"
	}
	principalUID := cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::User"), cedar.String(principalID))

	permissions := make([]cedar.Value, len(req.Principal.Permissions))
	for i, p := range req.Principal.Permissions {
		permissions[i] = cedar.String(p)
	}

	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = ResourceCollection
	}
	resourceID := req.ResourceID
	if resourceID == "" {
		resourceID = req.Collection
	}
	resourceUID := cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::"+resourceType), cedar.String(resourceID))

	resourceAttrs := cedar.RecordMap{
		"collection": cedar.String(req.Collection),
	}
	if resourceType == ResourceEntry {
		resourceAttrs["author"] = cedar.String(req.Author)
		resourceAttrs["published"] = cedar.Boolean(req.Published)
	}

	entities := cedar.EntityMap{
		principalUID: cedar.Entity{
			UID: principalUID,
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"id":          cedar.String(req.Principal.ID),
				"super":       cedar.Boolean(req.Principal.Super),
				"permissions": cedar.NewSet(permissions...),
			}),
		},
		resourceUID: cedar.Entity{
			UID:        resourceUID,
			Attributes: cedar.NewRecord(resourceAttrs),
		},
	}

	cedarReq := cedar.Request{
		Principal: principalUID,
		Action:    cedar.NewEntityUID(cedar.EntityType(cedarNamespace+"::Action"), cedar.String(req.Action)),
		Resource:  resourceUID,
		Context: cedar.NewRecord(cedar.RecordMap{
			"permission":             cedar.String(req.Permission),
			"otherAuthorsPermission": cedar.String(req.OtherAuthorsPermission),
		}),
	}

	decision, diagnostic := cedar.Authorize(a.policySet, entities, cedarReq)

	for _, e := range diagnostic.Errors {
		slog.WarnContext(ctx, "Cedar policy evaluation error",
			"policy", e.PolicyID,
			"error", e.Message,
		)
	}

	slog.DebugContext(ctx, "Authorization decision",
		"action", req.Action,
		"decision", decision,
		"principal", req.Principal.ID,
		"resource", resourceID,
		"permission", req.Permission,
	)

	var reasons []string
	for _, r := range diagnostic.Reasons {
		reasons = append(reasons, string(r.PolicyID))
	}

	return Decision{
		Allowed: decision == cedar.Allow,
		Reasons: reasons,
	}, nil
}
