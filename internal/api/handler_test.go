package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpakis/link-ops-sub001/internal/adb"
	"github.com/tpakis/link-ops-sub001/internal/applinks"
	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
	"github.com/tpakis/link-ops-sub001/internal/favorites"
)

type fakeEngine struct {
	report      *applinks.DiagnosticsReport
	analyzeErr  error
	reverifyErr error

	lastDevice  string
	lastPackage string
}

func (f *fakeEngine) AnalyzeVerification(_ context.Context, deviceID, packageName string) (*applinks.DiagnosticsReport, error) {
	f.lastDevice = deviceID
	f.lastPackage = packageName

	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}

	return f.report, nil
}

func (f *fakeEngine) Reverify(_ context.Context, deviceID, packageName string) error {
	f.lastDevice = deviceID
	f.lastPackage = packageName

	return f.reverifyErr
}

type fakeLister struct {
	devices []adb.Device
	err     error
}

func (f *fakeLister) Devices(context.Context) ([]adb.Device, error) {
	return f.devices, f.err
}

type fakeTrustValidator struct {
	validation  assetlinks.Validation
	lastDomain  string
	lastPackage string
}

func (f *fakeTrustValidator) Validate(_ context.Context, domain string) assetlinks.Validation {
	f.lastDomain = domain
	return f.validation
}

func (f *fakeTrustValidator) ValidateForPackage(_ context.Context, domain, packageName, _ string) assetlinks.Validation {
	f.lastDomain = domain
	f.lastPackage = packageName

	return f.validation
}

func newTestRouter(t *testing.T, mutate func(*RouterConfig)) http.Handler {
	t.Helper()

	store, err := favorites.NewStore(filepath.Join(t.TempDir(), "favorites.json"))
	require.NoError(t, err)

	cfg := RouterConfig{
		Engine: &fakeEngine{report: &applinks.DiagnosticsReport{
			PackageName: "com.example.app",
			DeviceID:    "emulator-5554",
		}},
		Devices:        &fakeLister{devices: []adb.Device{{Serial: "emulator-5554", Model: "sdk_gphone64"}}},
		Validator:      &fakeTrustValidator{validation: assetlinks.Validation{Domain: "example.com", Status: assetlinks.StatusValid}},
		Favorites:      store,
		MaxBodySize:    1 << 20,
		RequestTimeout: 30 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	return NewRouter(cfg)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	return w
}

func TestHandleHealth(t *testing.T) {
	handler := newTestRouter(t, nil)

	w := doJSON(t, handler, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "linkops", resp.Service)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestHandleDevices(t *testing.T) {
	t.Run("lists connected devices", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodGet, "/api/devices", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp DevicesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "emulator-5554", resp.Data[0].Serial)
	})

	t.Run("adb unavailable", func(t *testing.T) {
		handler := newTestRouter(t, func(cfg *RouterConfig) {
			cfg.Devices = &fakeLister{err: adb.ErrCommandFailed}
		})

		w := doJSON(t, handler, http.MethodGet, "/api/devices", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp DevicesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, errCodeUnavailable, resp.Error.Code)
	})
}

func TestHandleDiagnose(t *testing.T) {
	t.Run("successful run", func(t *testing.T) {
		engine := &fakeEngine{report: &applinks.DiagnosticsReport{
			PackageName: "com.example.app",
			DeviceID:    "emulator-5554",
			Domains: []applinks.DomainDiagnostic{
				{Domain: "example.com", State: applinks.StateVerified},
			},
		}}
		handler := newTestRouter(t, func(cfg *RouterConfig) { cfg.Engine = engine })

		w := doJSON(t, handler, http.MethodPost, "/api/diagnose", DiagnoseRequest{
			DeviceID: "emulator-5554",
			Package:  "com.example.app",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp DiagnoseResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.True(t, resp.Success)
		require.NotNil(t, resp.Data)
		assert.Equal(t, "com.example.app", resp.Data.PackageName)
		assert.Equal(t, "emulator-5554", engine.lastDevice)
	})

	t.Run("package not installed", func(t *testing.T) {
		handler := newTestRouter(t, func(cfg *RouterConfig) {
			cfg.Engine = &fakeEngine{analyzeErr: applinks.ErrPackageNotFound}
		})

		w := doJSON(t, handler, http.MethodPost, "/api/diagnose", DiagnoseRequest{
			DeviceID: "emulator-5554",
			Package:  "com.example.missing",
		})
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp DiagnoseResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, errCodeNotFound, resp.Error.Code)
	})

	t.Run("missing device", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/diagnose", DiagnoseRequest{Package: "com.example.app"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing package", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/diagnose", DiagnoseRequest{DeviceID: "emulator-5554"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/diagnose", map[string]string{
			"device_id": "emulator-5554",
			"package":   "com.example.app",
			"bogus":     "field",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleReverify(t *testing.T) {
	t.Run("issues command", func(t *testing.T) {
		engine := &fakeEngine{}
		handler := newTestRouter(t, func(cfg *RouterConfig) { cfg.Engine = engine })

		w := doJSON(t, handler, http.MethodPost, "/api/reverify", ReverifyRequest{
			DeviceID: "emulator-5554",
			Package:  "com.example.app",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "com.example.app", engine.lastPackage)
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/reverify", ReverifyRequest{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleAssetLinksValidate(t *testing.T) {
	t.Run("domain only", func(t *testing.T) {
		validator := &fakeTrustValidator{validation: assetlinks.Validation{
			Domain: "example.com",
			Status: assetlinks.StatusValid,
		}}
		handler := newTestRouter(t, func(cfg *RouterConfig) { cfg.Validator = validator })

		w := doJSON(t, handler, http.MethodPost, "/api/assetlinks/validate", AssetLinksValidateRequest{
			Domain: "https://www.example.com/path",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp AssetLinksValidateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.True(t, resp.Success)
		require.NotNil(t, resp.Data)
		assert.Equal(t, assetlinks.StatusValid, resp.Data.Status)

		// URL input is reduced to its host before validation
		assert.Equal(t, "www.example.com", validator.lastDomain)
		assert.Empty(t, validator.lastPackage)
	})

	t.Run("package scoped", func(t *testing.T) {
		validator := &fakeTrustValidator{validation: assetlinks.Validation{
			Domain: "example.com",
			Status: assetlinks.StatusFingerprintMismatch,
		}}
		handler := newTestRouter(t, func(cfg *RouterConfig) { cfg.Validator = validator })

		w := doJSON(t, handler, http.MethodPost, "/api/assetlinks/validate", AssetLinksValidateRequest{
			Domain:      "example.com",
			Package:     "com.example.app",
			Fingerprint: "AA:BB:CC",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "com.example.app", validator.lastPackage)
	})

	t.Run("missing domain", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/assetlinks/validate", AssetLinksValidateRequest{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unparseable domain", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/assetlinks/validate", AssetLinksValidateRequest{
			Domain: "not a domain",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFavoritesEndpoints(t *testing.T) {
	t.Run("add list remove", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodPost, "/api/favorites/", FavoriteRequest{
			DeviceID: "emulator-5554",
			Package:  "com.example.app",
			Label:    "debug build",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, handler, http.MethodGet, "/api/favorites/", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp FavoritesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "com.example.app", resp.Data[0].PackageName)
		assert.Equal(t, "debug build", resp.Data[0].Label)

		w = doJSON(t, handler, http.MethodDelete, "/api/favorites/", FavoriteRequest{
			DeviceID: "emulator-5554",
			Package:  "com.example.app",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, handler, http.MethodGet, "/api/favorites/", nil)
		resp = FavoritesResponse{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Empty(t, resp.Data)
	})

	t.Run("remove unknown favorite", func(t *testing.T) {
		handler := newTestRouter(t, nil)

		w := doJSON(t, handler, http.MethodDelete, "/api/favorites/", FavoriteRequest{
			DeviceID: "emulator-5554",
			Package:  "com.example.unknown",
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store not configured", func(t *testing.T) {
		handler := newTestRouter(t, func(cfg *RouterConfig) { cfg.Favorites = nil })

		w := doJSON(t, handler, http.MethodGet, "/api/favorites/", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
