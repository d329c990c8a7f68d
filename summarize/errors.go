package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/enrichment/resilience"
)

// Sentinel errors.
var (
	// ErrEmptyInput indicates the input text is empty or whitespace.
	ErrEmptyInput = errors.New("summarize: input text cannot be empty")

	// ErrTenantNotFound indicates the tenant store has no settings for the
	// tenant. Returned errors wrap it with the tenant id.
	ErrTenantNotFound = errors.New("summarize: tenant not found")

	// ErrNilDependency indicates New was called without a store, builder,
	// or invoker.
	ErrNilDependency = errors.New("summarize: nil dependency")
)

// TokenLimitError reports input longer than the tenant allows.
type TokenLimitError struct {
	Actual int
	Limit  int
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("summarize: input length (%d) exceeds maximum token limit (%d)", e.Actual, e.Limit)
}

// EnrichmentError reports that no summary could be produced after the tenant
// was resolved, most often because every upstream attempt failed.
type EnrichmentError struct {
	TenantID string
	Attempts int
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("summarize: failed to summarize text for tenant %s after %d attempts: %v", e.TenantID, e.Attempts, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies errors returned by Service.Summarize.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindEmptyInput
	KindTenantNotFound
	KindTokenLimitExceeded
	KindEnrichmentFailure
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmptyInput:
		return "empty_input"
	case KindTenantNotFound:
		return "tenant_not_found"
	case KindTokenLimitExceeded:
		return "token_limit_exceeded"
	case KindEnrichmentFailure:
		return "enrichment_failure"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Kind classifies err. Errors this package did not produce are treated as
// enrichment failures.
func Kind(err error) ErrorKind {
	var limitErr *TokenLimitError

	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrTenantNotFound):
		return KindTenantNotFound
	case errors.As(err, &limitErr):
		return KindTokenLimitExceeded
	case errors.Is(err, resilience.ErrMaxRetriesExceeded):
		return KindEnrichmentFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindEnrichmentFailure
	}
}
