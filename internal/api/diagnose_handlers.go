package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tpakis/link-ops-sub001/internal/applinks"
	"github.com/tpakis/link-ops-sub001/internal/notify"
)

// notifyTimeout bounds background webhook delivery.
const notifyTimeout = 15 * time.Second

// DiagnoseRequest represents an App Links diagnostics request.
type DiagnoseRequest struct {
	// DeviceID is the serial of the device to query.
	DeviceID string `json:"device_id"`
	// Package is the Android application package to diagnose.
	Package string `json:"package"`
}

// DiagnoseResponse represents the diagnostics response.
type DiagnoseResponse struct {
	// Success indicates whether the diagnostics run completed successfully.
	Success bool `json:"success"`
	// Data holds the per-domain diagnostics report when successful.
	Data *applinks.DiagnosticsReport `json:"data,omitempty"`
	// Error is the normalized error payload when diagnostics fail.
	Error *Error `json:"error,omitempty"`
}

// ReverifyRequest represents a re-verification trigger request.
type ReverifyRequest struct {
	// DeviceID is the serial of the device to target.
	DeviceID string `json:"device_id"`
	// Package is the Android application package to re-verify.
	Package string `json:"package"`
}

// ReverifyResponse represents the re-verification response.
type ReverifyResponse struct {
	// Success indicates whether the re-verification command was issued.
	Success bool `json:"success"`
	// Error is the normalized error payload when the command fails.
	Error *Error `json:"error,omitempty"`
}

// handleDiagnose runs a full verification diagnostics pass for one package.
func (h *Handler) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req DiagnoseRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDiagnoseError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	if req.DeviceID == "" {
		respondDiagnoseError(w, http.StatusBadRequest, errCodeValidation, ErrDeviceRequired.Error())
		return
	}
	if req.Package == "" {
		respondDiagnoseError(w, http.StatusBadRequest, errCodeValidation, ErrPackageRequired.Error())
		return
	}

	report, err := h.engine.AnalyzeVerification(r.Context(), req.DeviceID, req.Package)
	if err != nil {
		status := http.StatusInternalServerError
		code := errCodeInternal

		switch {
		case errors.Is(err, applinks.ErrPackageNotFound):
			status = http.StatusNotFound
			code = errCodeNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
			code = errCodeTimeout
		}

		respondDiagnoseError(w, status, code, err.Error())
		return
	}

	h.notifyIfUnhealthy(report)

	writeJSON(w, http.StatusOK, DiagnoseResponse{
		Success: true,
		Data:    report,
	})
}

// handleReverify issues the platform re-verification command for one package.
func (h *Handler) handleReverify(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req ReverifyRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ReverifyResponse{
			Error: &Error{Code: errCodeInvalidRequest, Message: ErrInvalidRequestBody.Error()},
		})
		return
	}

	if req.DeviceID == "" || req.Package == "" {
		writeJSON(w, http.StatusBadRequest, ReverifyResponse{
			Error: &Error{Code: errCodeValidation, Message: "device_id and package required"},
		})
		return
	}

	if err := h.engine.Reverify(r.Context(), req.DeviceID, req.Package); err != nil {
		writeJSON(w, http.StatusInternalServerError, ReverifyResponse{
			Error: &Error{Code: errCodeInternal, Message: err.Error()},
		})
		return
	}

	writeJSON(w, http.StatusOK, ReverifyResponse{Success: true})
}

// notifyIfUnhealthy posts a webhook summary for reports with failing domains.
// Delivery happens off the request path; failures are logged, not surfaced.
func (h *Handler) notifyIfUnhealthy(report *applinks.DiagnosticsReport) {
	if h.notifier == nil || !report.HasIssues() {
		return
	}

	msg := notify.ReportMessage(report)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := h.notifier.Send(ctx, msg); err != nil {
			log.Warn().Err(err).
				Str("package", report.PackageName).
				Str("device", report.DeviceID).
				Msg("failed to deliver diagnostics notification")
		}
	}()
}

func respondDiagnoseError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, DiagnoseResponse{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	})
}
