package utils

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type ContextKey string

const (
	ClaimsKey         ContextKey = "claims"
	OrganizationIDKey ContextKey = "organization_id"
	UserIDKey         ContextKey = "user_id"
	RolesKey          ContextKey = "roles"
)

var (
	ErrNoClaimsInContext         = errors.New("no claims found in context")
	ErrNoOrganizationIDInClaims  = errors.New("no organization_id found in claims")
	ErrInvalidOrganizationIDType = errors.New("organization_id must be a string")
	ErrNoUserIDInClaims          = errors.New("no user_id found in claims")
	ErrInvalidUserIDType         = errors.New("user_id must be a string")
)

// WithClaims stores the verified token claims on a plain context, for callers
// outside of gin such as workers and tests.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

func GetOrganizationIDFromContext(c context.Context) (string, error) {
	return stringClaim(c, OrganizationIDKey, ErrNoOrganizationIDInClaims, ErrInvalidOrganizationIDType)
}

func GetUserIDFromContext(c context.Context) (string, error) {
	return stringClaim(c, UserIDKey, ErrNoUserIDInClaims, ErrInvalidUserIDType)
}

// GetRolesFromContext returns the roles claim, or nil when it is absent.
func GetRolesFromContext(c context.Context) []string {
	claims, ok := c.Value(ClaimsKey).(jwt.MapClaims)
	if !ok {
		return nil
	}

	switch raw := claims[string(RolesKey)].(type) {
	case []string:
		return raw
	case []any:
		roles := make([]string, 0, len(raw))
		for _, role := range raw {
			if s, ok := role.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	default:
		return nil
	}
}

func HasRole(c context.Context, role string) bool {
	for _, r := range GetRolesFromContext(c) {
		if r == role {
			return true
		}
	}
	return false
}

func stringClaim(c context.Context, key ContextKey, missing, invalid error) (string, error) {
	claims, exists := c.Value(ClaimsKey).(jwt.MapClaims)
	if !exists {
		return "", ErrNoClaimsInContext
	}

	value, exists := claims[string(key)]
	if !exists {
		return "", missing
	}

	str, ok := value.(string)
	if !ok || str == "" {
		return "", invalid
	}

	return str, nil
}
