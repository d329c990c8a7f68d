// Package auth resolves which tenant a request acts for.
//
// An [Authenticator] turns request headers into an [Identity] carrying a
// tenant id. [HeaderAuthenticator] trusts the X-TENANT-ID header,
// [JWTAuthenticator] reads a tenant claim from a signed bearer token, and
// [CompositeAuthenticator] tries several in order. The package knows nothing
// about HTTP servers; callers build an [AuthRequest] from their transport.
package auth
