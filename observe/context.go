package observe

import (
	"context"

	"github.com/google/uuid"
)

// RequestMeta correlates log lines and spans for one inbound request.
type RequestMeta struct {
	RequestID string
	TenantID  string
}

type requestKey struct{}

// WithRequest returns a context carrying meta.
func WithRequest(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestKey{}, meta)
}

// RequestFromContext returns the meta bound by WithRequest.
func RequestFromContext(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	meta, ok := ctx.Value(requestKey{}).(RequestMeta)
	return meta, ok
}

// NewRequestID returns a random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}
