package auth

import (
	"context"
	"strings"
)

// DefaultTenantHeader carries the tenant id on plain requests.
const DefaultTenantHeader = "X-TENANT-ID"

// HeaderAuthenticator trusts a tenant id supplied in a request header.
type HeaderAuthenticator struct {
	header string
}

// NewHeaderAuthenticator creates a HeaderAuthenticator reading header.
// An empty header means DefaultTenantHeader.
func NewHeaderAuthenticator(header string) *HeaderAuthenticator {
	if header == "" {
		header = DefaultTenantHeader
	}
	return &HeaderAuthenticator{header: header}
}

// Header returns the header name read by the authenticator.
func (a *HeaderAuthenticator) Header() string { return a.header }

// Name returns "header".
func (a *HeaderAuthenticator) Name() string { return "header" }

// Supports reports whether the tenant header is present.
func (a *HeaderAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return strings.TrimSpace(req.GetHeader(a.header)) != ""
}

// Authenticate returns an identity for the header's tenant id.
func (a *HeaderAuthenticator) Authenticate(_ context.Context, req *AuthRequest) (*AuthResult, error) {
	tenantID := strings.TrimSpace(req.GetHeader(a.header))
	if tenantID == "" {
		return AuthFailure(ErrMissingTenant, a.Name()), nil
	}
	return AuthSuccess(&Identity{
		Principal: tenantID,
		TenantID:  tenantID,
		Method:    AuthMethodHeader,
	}), nil
}

var _ Authenticator = (*HeaderAuthenticator)(nil)
