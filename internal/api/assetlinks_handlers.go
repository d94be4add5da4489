package api

import (
	"net/http"

	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
	"github.com/tpakis/link-ops-sub001/internal/domain"
)

// AssetLinksValidateRequest represents a trust file validation request.
type AssetLinksValidateRequest struct {
	// Domain is the host whose trust file should be fetched and validated.
	Domain string `json:"domain"`
	// Package optionally scopes validation to one application package.
	Package string `json:"package,omitempty"`
	// Fingerprint is the expected SHA-256 signing certificate fingerprint,
	// only meaningful together with Package.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// AssetLinksValidateResponse represents the trust file validation response.
type AssetLinksValidateResponse struct {
	// Success indicates whether the validation ran; a well-formed request
	// always succeeds even when the trust file itself is broken.
	Success bool `json:"success"`
	// Data holds the validation verdict with its issues.
	Data *assetlinks.Validation `json:"data,omitempty"`
	// Error is the normalized error payload for malformed requests.
	Error *Error `json:"error,omitempty"`
}

// handleAssetLinksValidate fetches and validates a domain's assetlinks.json.
func (h *Handler) handleAssetLinksValidate(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req AssetLinksValidateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondAssetLinksError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	if req.Domain == "" {
		respondAssetLinksError(w, http.StatusBadRequest, errCodeValidation, ErrDomainRequired.Error())
		return
	}

	info, err := domain.Parse(req.Domain)
	if err != nil {
		respondAssetLinksError(w, http.StatusBadRequest, errCodeValidation, err.Error())
		return
	}

	host := info.Domain

	var validation assetlinks.Validation
	if req.Package != "" {
		validation = h.validator.ValidateForPackage(r.Context(), host, req.Package, req.Fingerprint)
	} else {
		validation = h.validator.Validate(r.Context(), host)
	}

	writeJSON(w, http.StatusOK, AssetLinksValidateResponse{
		Success: true,
		Data:    &validation,
	})
}

func respondAssetLinksError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, AssetLinksValidateResponse{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	})
}
