package api

import (
	"net/http"

	"github.com/tpakis/link-ops-sub001/internal/favorites"
)

// FavoriteRequest represents a request to save or remove a tracked package.
type FavoriteRequest struct {
	// DeviceID is the device serial the package lives on.
	DeviceID string `json:"device_id"`
	// Package is the Android application package.
	Package string `json:"package"`
	// Label is an optional display name for the entry.
	Label string `json:"label,omitempty"`
}

// FavoritesResponse represents the favorites listing and mutation response.
type FavoritesResponse struct {
	// Success indicates whether the operation completed successfully.
	Success bool `json:"success"`
	// Data holds the stored favorites when listing.
	Data []favorites.Favorite `json:"data,omitempty"`
	// Error is the normalized error payload when the operation fails.
	Error *Error `json:"error,omitempty"`
}

// handleFavoritesList returns all saved device/package pairs.
func (h *Handler) handleFavoritesList(w http.ResponseWriter, _ *http.Request) {
	if h.favorites == nil {
		respondFavoritesError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrFavoritesNotConfigured.Error())
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{
		Success: true,
		Data:    h.favorites.List(),
	})
}

// handleFavoritesAdd saves a device/package pair for quick re-diagnosis.
func (h *Handler) handleFavoritesAdd(w http.ResponseWriter, r *http.Request) {
	if h.favorites == nil {
		respondFavoritesError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrFavoritesNotConfigured.Error())
		return
	}

	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req FavoriteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondFavoritesError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	if req.DeviceID == "" {
		respondFavoritesError(w, http.StatusBadRequest, errCodeValidation, ErrDeviceRequired.Error())
		return
	}
	if req.Package == "" {
		respondFavoritesError(w, http.StatusBadRequest, errCodeValidation, ErrPackageRequired.Error())
		return
	}

	err := h.favorites.Add(favorites.Favorite{
		DeviceID:    req.DeviceID,
		PackageName: req.Package,
		Label:       req.Label,
	})
	if err != nil {
		respondFavoritesError(w, http.StatusInternalServerError, errCodeInternal, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Success: true})
}

// handleFavoritesRemove deletes a saved device/package pair.
func (h *Handler) handleFavoritesRemove(w http.ResponseWriter, r *http.Request) {
	if h.favorites == nil {
		respondFavoritesError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrFavoritesNotConfigured.Error())
		return
	}

	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req FavoriteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondFavoritesError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	if req.DeviceID == "" || req.Package == "" {
		respondFavoritesError(w, http.StatusBadRequest, errCodeValidation, "device_id and package required")
		return
	}

	removed, err := h.favorites.Remove(req.DeviceID, req.Package)
	if err != nil {
		respondFavoritesError(w, http.StatusInternalServerError, errCodeInternal, err.Error())
		return
	}
	if !removed {
		respondFavoritesError(w, http.StatusNotFound, errCodeNotFound, ErrFavoriteNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, FavoritesResponse{Success: true})
}

func respondFavoritesError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, FavoritesResponse{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	})
}
