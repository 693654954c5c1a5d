package types

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is an authenticated identity and the roles granted to it, in grant order.
type Principal struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// HasRole reports whether role was granted. A "ROLE_" prefix is ignored on
// both sides.
func (p Principal) HasRole(role string) bool {
	want := strings.TrimPrefix(role, "ROLE_")
	for _, r := range p.Roles {
		if strings.TrimPrefix(strings.TrimSpace(r), "ROLE_") == want {
			return true
		}
	}
	return false
}

// Require returns an error wrapping ErrForbidden when role was not granted.
func (p Principal) Require(role string) error {
	if p.HasRole(role) {
		return nil
	}
	return fmt.Errorf("%w: %q lacks role %s", ErrForbidden, p.Name, role)
}

// Claims is the payload of an access token. Scope is the comma-joined role list.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Roles splits the scope claim back into the granted roles.
func (c *Claims) Roles() []string {
	if c.Scope == "" {
		return []string{}
	}
	return strings.Split(c.Scope, ",")
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}
