package auth

//go:generate mockgen -destination=mocks/mock_validator.go -package=mocks -source=validator.go tokenValidatorInterface

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/entries-server/internal/config"
)

// tokenValidatorInterface abstracts token validation for testability.
type tokenValidatorInterface interface {
	ValidateToken(ctx context.Context, token string) (jwt.MapClaims, error)
}

var (
	hmacMethods    = []string{"HS256", "HS384", "HS512"}
	rsaMethods     = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	ecdsaMethods   = []string{"ES256", "ES384", "ES512"}
	ed25519Methods = []string{"EdDSA"}
)

// jwtValidator validates locally signed bearer tokens.
type jwtValidator struct {
	key    any
	parser *jwt.Parser
}

var _ tokenValidatorInterface = (*jwtValidator)(nil)

// newJWTValidator builds a validator from the configured key material.
func newJWTValidator(cfg *config.JWTConfig) (*jwtValidator, error) {
	if cfg == nil {
		return nil, errors.New("jwt configuration is required for jwt mode")
	}

	var (
		key     any
		methods []string
	)
	switch {
	case cfg.HMACSecretFile != "":
		secret, err := cfg.GetHMACSecret()
		if err != nil {
			return nil, err
		}
		if len(secret) == 0 {
			return nil, errors.New("hmac secret is empty")
		}
		key, methods = secret, hmacMethods
	case cfg.PublicKeyFile != "":
		pem, err := cfg.GetPublicKey()
		if err != nil {
			return nil, err
		}
		key, methods, err = parsePublicKey(pem)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("one of hmacSecretFile or publicKeyFile must be configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.GetLeeway()),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &jwtValidator{key: key, parser: jwt.NewParser(opts...)}, nil
}

// ValidateToken parses the token and verifies signature and registered claims.
func (v *jwtValidator) ValidateToken(_ context.Context, token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

func parsePublicKey(pem []byte) (any, []string, error) {
	if key, err := jwt.ParseRSAPublicKeyFromPEM(pem); err == nil {
		return key, rsaMethods, nil
	}
	if key, err := jwt.ParseECPublicKeyFromPEM(pem); err == nil {
		return key, ecdsaMethods, nil
	}
	if key, err := jwt.ParseEdPublicKeyFromPEM(pem); err == nil {
		return key, ed25519Methods, nil
	}
	return nil, nil, fmt.Errorf("public key must be a PEM encoded RSA, ECDSA or Ed25519 key")
}
