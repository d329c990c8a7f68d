package auth

import "time"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodHeader    AuthMethod = "header"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is the principal a request acts as.
type Identity struct {
	// Principal is the subject (token sub, or the tenant for header auth).
	Principal string

	// TenantID selects tenant settings and the cache namespace.
	TenantID string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims holds raw token claims. Empty for header auth.
	Claims map[string]any

	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired reports whether ExpiresAt has passed. A zero ExpiresAt never
// expires.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether the identity names no principal.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity returns an identity with no tenant.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
		Claims:    make(map[string]any),
	}
}
