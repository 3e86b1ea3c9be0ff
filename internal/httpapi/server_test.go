package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchscan/internal/intent"
	"switchscan/sdk"
)

type fakeBackend struct {
	status     Status
	devices    []sdk.Device
	injected   []intent.Intent
	taps       int
	scanning   bool
	discovered int
	injectErr  error
}

func (f *fakeBackend) Status() Status {
	st := f.status
	st.Scanning = f.scanning
	return st
}
func (f *fakeBackend) Devices() []sdk.Device { return f.devices }
func (f *fakeBackend) InjectIntent(in intent.Intent) error {
	if f.injectErr != nil {
		return f.injectErr
	}
	f.injected = append(f.injected, in)
	return nil
}
func (f *fakeBackend) InjectTap() error { f.taps++; return nil }
func (f *fakeBackend) StartScan() error { f.scanning = true; return nil }
func (f *fakeBackend) StopScan() error  { f.scanning = false; return nil }
func (f *fakeBackend) Discover() error  { f.discovered++; return nil }

func newTestServer(b *fakeBackend) *Server {
	return New("127.0.0.1:0", b, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeBackend{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ok"])
}

func TestStatus(t *testing.T) {
	b := &fakeBackend{status: Status{Screen: "presets", Zone: "grid", Label: "Thank you", PeriodMS: 1500}}
	rec := do(t, newTestServer(b), http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "presets", st.Screen)
	assert.Equal(t, "Thank you", st.Label)
	assert.Equal(t, int64(1500), st.PeriodMS)
}

func TestDevicesNeverNull(t *testing.T) {
	rec := do(t, newTestServer(&fakeBackend{}), http.MethodGet, "/devices", "")
	assert.Contains(t, rec.Body.String(), `"devices":[]`)
}

func TestIntentInjection(t *testing.T) {
	b := &fakeBackend{}
	s := newTestServer(b)

	rec := do(t, s, http.MethodPost, "/intent", `{"intent":"up"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = do(t, s, http.MethodPost, "/intent", `{"intent":"action"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = do(t, s, http.MethodPost, "/intent", `{"tap":true}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, []intent.Intent{intent.Up, intent.Activate}, b.injected)
	assert.Equal(t, 1, b.taps)
}

func TestIntentRejectsBadInput(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/intent", `{"intent":"sideways"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/intent", `{"intent":"none"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/intent", `not json`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/intent", "").Code)
}

func TestIntentBackendFailure(t *testing.T) {
	b := &fakeBackend{injectErr: errors.New("ui not running")}
	rec := do(t, newTestServer(b), http.MethodPost, "/intent", `{"intent":"left"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ui not running", decode(t, rec)["error"])
}

func TestScanStartStop(t *testing.T) {
	b := &fakeBackend{}
	s := newTestServer(b)

	rec := do(t, s, http.MethodPost, "/scan/start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, b.scanning)

	rec = do(t, s, http.MethodPost, "/scan/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, b.scanning)

	rec = do(t, s, http.MethodPost, "/devices/discover", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, b.discovered)
}
