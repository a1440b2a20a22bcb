// Package main implements the fastdial API server: it hosts dial-drag
// sessions so thin clients can post raw gesture angles and read back the
// updated fasting window.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fastwell-dev/fastdial/pkg/clockmath"
	"github.com/fastwell-dev/fastdial/pkg/fastwindow"
	"github.com/fastwell-dev/fastdial/pkg/preset"
	"github.com/fastwell-dev/fastdial/pkg/sessionstore"
)

var (
	port       = flag.String("port", "8080", "Port for the API server")
	sessionTTL = flag.Duration("session-ttl", 30*time.Minute, "Idle time before a dial session expires")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	// Drag samples arrive in bursts while a handle is held, so the budget
	// is generous: 600 requests per minute per IP.
	if len(valid) >= 600 {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

type server struct {
	sessions *sessionstore.Store
	limiter  *rateLimiter
	logger   *slog.Logger
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println("fastdial Server v1.2.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *port == "8080" && os.Getenv("PORT") != "" {
		*port = os.Getenv("PORT")
	}

	logger.Info("Server configuration", "port", *port, "session_ttl", *sessionTTL, "verbose", *verbose)

	srv := newServer(sessionstore.New(*sessionTTL, logger), logger)

	httpSrv := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

func newServer(sessions *sessionstore.Store, logger *slog.Logger) *server {
	return &server{
		sessions: sessions,
		limiter:  newRateLimiter(),
		logger:   logger,
	}
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/v1/sessions/{id}/drag", s.handleDrag)
	mux.HandleFunc("POST /api/v1/sessions/{id}/anchor", s.handleAnchor)
	mux.HandleFunc("POST /api/v1/sessions/{id}/duration", s.handleDuration)
	return s.wrap(mux)
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		handler.ServeHTTP(w, r)

		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// windowState is the wire form of a fasting window.
type windowState struct {
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	StartAngle          float64   `json:"start_angle"`
	EndAngle            float64   `json:"end_angle"`
	DurationMinutes     int       `json:"duration_minutes"`
	EatingWindowMinutes int       `json:"eating_window_minutes"`
	Anchor              string    `json:"anchor"`
	StepMinutes         int       `json:"step_minutes"`
}

func stateOf(w *fastwindow.Window) windowState {
	return windowState{
		Start:               w.Start(),
		End:                 w.End(),
		StartAngle:          w.StartAngle(),
		EndAngle:            w.EndAngle(),
		DurationMinutes:     w.DurationMinutes(),
		EatingWindowMinutes: w.EatingWindowMinutes(),
		Anchor:              w.Anchor().String(),
		StepMinutes:         w.Step(),
	}
}

type sessionResponse struct {
	SessionID string      `json:"session_id"`
	Window    windowState `json:"window"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func clientIP(r *http.Request) string {
	return strings.Split(r.RemoteAddr, ":")[0]
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

type createRequest struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end,omitempty"`
	Preset      string    `json:"preset,omitempty"`
	StepMinutes int       `json:"step_minutes,omitempty"`
	Anchor      string    `json:"anchor,omitempty"`
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Start.IsZero() {
		s.writeError(w, http.StatusBadRequest, "start is required")
		return
	}

	var opts []fastwindow.Option
	if req.StepMinutes != 0 {
		opts = append(opts, fastwindow.WithStep(req.StepMinutes))
	}
	if req.Anchor != "" {
		b, err := fastwindow.ParseBoundary(req.Anchor)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts = append(opts, fastwindow.WithAnchor(b))
	}

	end := req.End
	if req.Preset != "" {
		p, ok := preset.Lookup(req.Preset)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown preset %q", req.Preset))
			return
		}
		end = req.Start.Add(time.Duration(p.FastingMinutes) * time.Minute)
	}
	if end.IsZero() {
		s.writeError(w, http.StatusBadRequest, "either end or preset is required")
		return
	}

	win, err := fastwindow.New(req.Start, end, opts...)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := s.sessions.Create(win)
	s.logger.Info("session created",
		"id", sess.ID,
		"duration_minutes", win.DurationMinutes(),
		"client_ip", clientIP(r))
	s.writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID, Window: stateOf(win)})
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var state windowState
	sess.Update(func(win *fastwindow.Window) {
		state = stateOf(win)
	})
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID, Window: state})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type dragRequest struct {
	Boundary     string  `json:"boundary"`
	AngleDegrees float64 `json:"angle_degrees"`
}

func (s *server) handleDrag(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !s.limiter.allow(ip) {
		s.logger.Warn("rate limit exceeded", "client_ip", ip)
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	boundary, err := fastwindow.ParseBoundary(req.Boundary)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The session mutex serializes samples from both handles into one
	// ordered stream, which is what keeps the duration lock intact under
	// multi-touch clients.
	var state windowState
	sess.Update(func(win *fastwindow.Window) {
		win.UpdateFromDrag(boundary, req.AngleDegrees)
		state = stateOf(win)
	})

	s.logger.Debug("drag applied",
		"id", sess.ID,
		"boundary", boundary.String(),
		"degrees", req.AngleDegrees,
		"minute_of_day", clockmath.MinuteOfDay(state.Start))
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID, Window: state})
}

type anchorRequest struct {
	Anchor string `json:"anchor"`
}

func (s *server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req anchorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	boundary, err := fastwindow.ParseBoundary(req.Anchor)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var state windowState
	sess.Update(func(win *fastwindow.Window) {
		win.SetAnchor(boundary)
		state = stateOf(win)
	})
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID, Window: state})
}

type durationRequest struct {
	DurationMinutes int `json:"duration_minutes"`
}

func (s *server) handleDuration(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req durationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var state windowState
	var updateErr error
	sess.Update(func(win *fastwindow.Window) {
		updateErr = win.SetDuration(req.DurationMinutes)
		state = stateOf(win)
	})
	if updateErr != nil {
		s.writeError(w, http.StatusBadRequest, updateErr.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID, Window: state})
}
