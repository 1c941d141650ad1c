package daemon

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/services"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/auth", srv.handleAuth)
	mux.HandleFunc("/oauth2callback", srv.handleOAuthCallback)
	mux.HandleFunc("/api/scan", srv.requireToken(srv.handleScan))
	mux.HandleFunc("/api/status", srv.requireToken(srv.handleStatus))
	mux.HandleFunc("/api/history", srv.requireToken(srv.handleHistory))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.NewNop()
}

// Addr returns the bound listen address, useful when the bind port is 0.
func (s *apiServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// requireToken guards the /api endpoints with the configured bearer token.
// OAuth endpoints stay open because the browser flow cannot send headers.
func (s *apiServer) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			supplied := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.token)) != 1 {
				s.writeError(w, http.StatusUnauthorized, "invalid or missing api token")
				return
			}
		}
		next(w, r)
	}
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *apiServer) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.drive.HasToken() {
		s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
		return
	}
	url, err := s.daemon.drive.AuthURL(s.daemon.oauthState)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *apiServer) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	if state := query.Get("state"); state != s.daemon.oauthState {
		s.writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	code := query.Get("code")
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}
	if err := s.daemon.drive.Exchange(r.Context(), code); err != nil {
		s.log().Error("oauth exchange failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}
	s.log().Info("authentication successful")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Authentication successful. You can close this window.\n"))
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// The default trigger acknowledges immediately and lets the pass run in
	// the background; ?wait=1 blocks until the pass finishes so callers can
	// report the outcome.
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); !wait {
		if err := s.daemon.StartScan("manual"); err != nil {
			if errors.Is(err, pipeline.ErrPassActive) {
				s.writeError(w, http.StatusConflict, "a scan pass is already running")
				return
			}
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.ScanResponse{Outcome: "accepted"})
		return
	}

	result, err := s.daemon.TriggerScan(r.Context(), "manual")
	if errors.Is(err, pipeline.ErrPassActive) {
		s.writeError(w, http.StatusConflict, "a scan pass is already running")
		return
	}

	resp := api.ScanResponse{}
	if result != nil {
		resp = api.ScanResponse{
			PassID:    result.PassID,
			Outcome:   result.Outcome,
			Scanned:   result.Scanned,
			Published: result.Published,
			Failed:    result.Failed,
		}
	}
	if err != nil {
		resp.Error = err.Error()
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrCredential) {
			status = http.StatusUnauthorized
		}
		s.writeJSON(w, status, resp)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	passLimit, _ := strconv.Atoi(query.Get("passes"))
	itemLimit, _ := strconv.Atoi(query.Get("items"))

	history, err := s.daemon.history.Recent(r.Context(), passLimit, itemLimit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Warn("failed to encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
