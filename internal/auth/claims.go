package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/entries-server/internal/service"
)

// Custom claims read from access tokens
const (
	claimEmail       = "email"
	claimName        = "name"
	claimPermissions = "permissions"
	claimSuper       = "super"
	claimPreferences = "preferences"
)

var errMissingSubject = errors.New("token has no subject")

// UserFromClaims maps validated claims to the acting user. Scope based
// permissions are added later by the authorization middleware.
func UserFromClaims(claims jwt.MapClaims) (*service.ActingUser, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	if sub == "" {
		return nil, errMissingSubject
	}

	user := &service.ActingUser{ID: sub}
	user.Email, _ = claims[claimEmail].(string)
	user.Name, _ = claims[claimName].(string)
	user.Super, _ = claims[claimSuper].(bool)
	user.Preferences, _ = claims[claimPreferences].(map[string]any)

	switch perms := claims[claimPermissions].(type) {
	case []any:
		for _, p := range perms {
			if s, ok := p.(string); ok && s != "" {
				user.Permissions = append(user.Permissions, s)
			}
		}
	case []string:
		user.Permissions = append(user.Permissions, perms...)
	case nil:
	default:
		return nil, fmt.Errorf("invalid %s claim", claimPermissions)
	}

	return user, nil
}
