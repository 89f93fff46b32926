package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/session"
	"github.com/ringscope/ringscope/internal/trace"
)

// Config holds the feed server configuration
type Config struct {
	Host string
	Port int
}

// Status is the /api/status snapshot.
type Status struct {
	State     string           `json:"state"` // "idle", "running", "finished"
	Profile   string           `json:"profile,omitempty"`
	Probe     string           `json:"probe,omitempty"`
	Clients   int              `json:"clients"`
	StartedAt time.Time        `json:"started_at,omitempty"`
	Outcome   *session.Outcome `json:"outcome,omitempty"`
}

// Server exposes a running session over HTTP and WebSocket.
type Server struct {
	config   Config
	logger   *zap.Logger
	hub      *Hub
	upgrader websocket.Upgrader

	httpServer *http.Server

	mu        sync.Mutex
	state     string
	profile   string
	probe     string
	startedAt time.Time
	outcome   *session.Outcome
	report    *trace.Report
}

// New creates a feed server.
func New(config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config: config,
		logger: logger,
		hub:    NewHub(logger),
		upgrader: websocket.Upgrader{
			// The feed is a local diagnostic surface; any origin may read it.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		state: "idle",
	}
}

// Hub returns the server's event hub. Session events published to it are
// fanned out to connected clients.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Publish forwards one session event to all clients.
func (s *Server) Publish(ev session.Event) {
	s.mu.Lock()
	probe := s.probe
	s.mu.Unlock()
	logging.LogSessionEvent(probe, string(ev.Type))
	s.hub.Publish(ev)
}

// SetSession records session identity for /api/status and marks it running.
func (s *Server) SetSession(profile, probe string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = "running"
	s.profile = profile
	s.probe = probe
	s.startedAt = time.Now()
	s.outcome = nil
}

// SetOutcome records the final session outcome and marks the session finished.
func (s *Server) SetOutcome(out session.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = "finished"
	s.outcome = &out
}

// SetReport records the most recent trace decode for /api/report.
func (s *Server) SetReport(report trace.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &report
}

// Handler builds the HTTP mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// Start listens and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Feed server listening", zap.String("addr", listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown stops the server and disconnects all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err))
		return
	}

	s.logger.Info("WebSocket client connected",
		zap.String("remote_addr", r.RemoteAddr))

	c := s.hub.add(conn)

	// Drain (and discard) client messages so close frames and pings are
	// processed; the feed is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(c)
				return
			}
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := Status{
		State:     s.state,
		Profile:   s.profile,
		Probe:     s.probe,
		Clients:   s.hub.ClientCount(),
		StartedAt: s.startedAt,
		Outcome:   s.outcome,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	report := s.report
	s.mu.Unlock()

	if report == nil {
		http.Error(w, "no report available", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
