// Package api provides HTTP handlers for the App Links diagnostics service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tpakis/link-ops-sub001/internal/adb"
	"github.com/tpakis/link-ops-sub001/internal/applinks"
	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
	"github.com/tpakis/link-ops-sub001/internal/favorites"
	"github.com/tpakis/link-ops-sub001/internal/notify"
)

// Diagnoser runs App Links verification diagnostics against a device
type Diagnoser interface {
	AnalyzeVerification(ctx context.Context, deviceID, packageName string) (*applinks.DiagnosticsReport, error)
	Reverify(ctx context.Context, deviceID, packageName string) error
}

// DeviceLister enumerates connected Android devices
type DeviceLister interface {
	Devices(ctx context.Context) ([]adb.Device, error)
}

// TrustValidator fetches and validates a domain's trust file
type TrustValidator interface {
	Validate(ctx context.Context, domain string) assetlinks.Validation
	ValidateForPackage(ctx context.Context, domain, packageName, expectedFingerprint string) assetlinks.Validation
}

// Handler manages API endpoints
type Handler struct {
	engine    Diagnoser
	devices   DeviceLister
	validator TrustValidator
	favorites *favorites.Store
	notifier  *notify.Client

	maxBodySize int64
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "linkops",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// DevicesResponse represents the connected-device listing response
type DevicesResponse struct {
	// Success indicates whether the device listing completed successfully.
	Success bool `json:"success"`
	// Data holds the connected devices when successful.
	Data []adb.Device `json:"data,omitempty"`
	// Error is the normalized error payload when the listing fails.
	Error *Error `json:"error,omitempty"`
}

// handleDevices lists Android devices visible to the adb server.
func (h *Handler) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.Devices(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, DevicesResponse{
			Success: false,
			Error:   &Error{Code: errCodeUnavailable, Message: err.Error()},
		})
		return
	}

	writeJSON(w, http.StatusOK, DevicesResponse{
		Success: true,
		Data:    devices,
	})
}
