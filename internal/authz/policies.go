package authz

// defaultPolicies contains the built-in Cedar authorization policies.
// Permission strings are computed in Go and passed in the request context,
// so the policies stay independent of collection handles.
const defaultPolicies = `
@id("super-user")
permit(principal, action, resource)
when { principal.super };

@id("collection-permission")
permit(
  principal,
  action in [Entries::Action::"view", Entries::Action::"create", Entries::Action::"store"],
  resource
) when {
  principal.permissions.contains(context.permission)
};

@id("own-entry")
permit(
  principal,
  action in [Entries::Action::"edit", Entries::Action::"update", Entries::Action::"delete", Entries::Action::"publish"],
  resource
) when {
  principal.permissions.contains(context.permission) &&
  resource has author &&
  (resource.author == "" || resource.author == principal.id)
};

@id("other-authors-entry")
permit(
  principal,
  action in [Entries::Action::"edit", Entries::Action::"update", Entries::Action::"delete", Entries::Action::"publish"],
  resource
) when {
  principal.permissions.contains(context.permission) &&
  principal.permissions.contains(context.otherAuthorsPermission)
};
`
