package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/enrichment/auth"
	"github.com/jonwraymond/enrichment/observe"
)

// SummarizeRequest is the summarize request body.
type SummarizeRequest struct {
	InputText string `json:"input_text"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	meta, _ := observe.RequestFromContext(ctx)
	meta.TenantID = identity.TenantID
	ctx = observe.WithRequest(auth.WithIdentity(ctx, identity), meta)

	var body SummarizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn(ctx, "request body too large", observe.F("limit", tooLarge.Limit))
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.logger.Warn(ctx, "malformed request body", observe.Err(err))
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Malformed request body")
		return
	}

	result, err := s.svc.Summarize(ctx, identity.TenantID, body.InputText)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// authenticate resolves the tenant or writes the error response.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	ctx := r.Context()
	req := auth.NewAuthRequest(r)
	missing := fmt.Sprintf("Required header %s is missing", s.tenantHeader)

	if !s.authn.Supports(ctx, req) {
		s.logger.Warn(ctx, "tenant header missing", observe.F("header", s.tenantHeader))
		writeError(w, http.StatusBadRequest, CodeBadRequest, missing)
		return nil, false
	}

	result, err := s.authn.Authenticate(ctx, req)
	if err != nil {
		s.logger.Error(ctx, "authentication error", observe.Err(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "authentication unavailable")
		return nil, false
	}
	if !result.Authenticated {
		if errors.Is(result.Error, auth.ErrMissingTenant) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, missing)
			return nil, false
		}
		s.logger.Warn(ctx, "authentication failed", observe.F("method", result.Method), observe.Err(result.Error))
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, result.Error.Error())
		return nil, false
	}
	return result.Identity, true
}
