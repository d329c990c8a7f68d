package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/enrichment/summarize"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeEmptyInput         = "EMPTY_INPUT"
	CodeTenantNotFound     = "TENANT_NOT_FOUND"
	CodeTokenLimitExceeded = "TOKEN_LIMIT_EXCEEDED"
	CodeEnrichmentError    = "ENRICHMENT_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a summarize error to an HTTP status and code.
func statusFor(err error) (int, string) {
	switch summarize.Kind(err) {
	case summarize.KindEmptyInput:
		return http.StatusBadRequest, CodeEmptyInput
	case summarize.KindTenantNotFound:
		return http.StatusNotFound, CodeTenantNotFound
	case summarize.KindTokenLimitExceeded:
		return http.StatusBadRequest, CodeTokenLimitExceeded
	default:
		var enrichErr *summarize.EnrichmentError
		if errors.As(err, &enrichErr) {
			return http.StatusInternalServerError, CodeEnrichmentError
		}
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
