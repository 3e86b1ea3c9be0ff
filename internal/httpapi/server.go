package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"switchscan/internal/intent"
	"switchscan/sdk"
)

// Status is the snapshot served on /status.
type Status struct {
	Screen     string `json:"screen"`
	Zone       string `json:"zone"`
	Index      int    `json:"index"`
	Label      string `json:"label"`
	Highlight  string `json:"highlight"`
	Scanning   bool   `json:"scanning"`
	PeriodMS   int64  `json:"period_ms"`
	Connection string `json:"connection"`
	Device     string `json:"device,omitempty"`
	Sentence   string `json:"sentence"`
}

// Backend is the running application seen by the API. Inject methods must
// hand the intent to the host event loop and return without waiting for it.
type Backend interface {
	Status() Status
	Devices() []sdk.Device
	InjectIntent(in intent.Intent) error
	InjectTap() error
	StartScan() error
	StopScan() error
	Discover() error
}

type Server struct {
	addr    string
	backend Backend
	logger  *slog.Logger
	router  *mux.Router
	http    *http.Server
}

func New(addr string, backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:    addr,
		backend: backend,
		logger:  logger.With("component", "httpapi"),
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	s.router.HandleFunc("/devices/discover", s.handleDiscover).Methods(http.MethodPost)
	s.router.HandleFunc("/intent", s.handleIntent).Methods(http.MethodPost)
	s.router.HandleFunc("/scan/start", s.handleScanStart).Methods(http.MethodPost)
	s.router.HandleFunc("/scan/stop", s.handleScanStop).Methods(http.MethodPost)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", "addr", s.addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "switchscan",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Status())
}

func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.backend.Devices()
	if devices == nil {
		devices = []sdk.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "devices": devices})
}

func (s *Server) handleDiscover(w http.ResponseWriter, _ *http.Request) {
	if err := s.backend.Discover(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

type intentPayload struct {
	Intent string `json:"intent"`
	Tap    bool   `json:"tap"`
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var payload intentPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}

	var err error
	switch {
	case payload.Tap:
		err = s.backend.InjectTap()
	default:
		in, perr := intent.Parse(payload.Intent)
		if perr != nil || in == intent.None {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "unknown intent"})
			return
		}
		err = s.backend.InjectIntent(in)
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (s *Server) handleScanStart(w http.ResponseWriter, _ *http.Request) {
	if err := s.backend.StartScan(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": s.backend.Status()})
}

func (s *Server) handleScanStop(w http.ResponseWriter, _ *http.Request) {
	if err := s.backend.StopScan(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": s.backend.Status()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
