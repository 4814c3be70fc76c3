// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/zen-tui/internal/artifact"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:7878"

	// DefaultPushInterval is the minimum spacing between reload pushes.
	DefaultPushInterval = 500 * time.Millisecond
)

// emptyDocument is served before the dock renders anything.
var emptyDocument = artifact.WrapFragment(
	`<p style="font-family:sans-serif;color:#888;text-align:center;margin-top:20vh">Nothing to preview yet.</p>`)

// ============================================================================
// SERVER
// ============================================================================

// Server serves the latest published document.
type Server struct {
	addr    string
	mux     *http.ServeMux
	server  *http.Server
	hub     *hub
	limiter *rate.Limiter
	notify  chan struct{}

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	doc     string
	version uint64
	url     string
}

// Option configures a Server.
type Option func(*Server)

// WithPushInterval sets the minimum spacing between reload pushes.
func WithPushInterval(d time.Duration) Option {
	return func(s *Server) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New creates a preview server for addr. An empty addr uses DefaultAddr.
func New(addr string, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		addr:    addr,
		mux:     http.NewServeMux(),
		hub:     newHub(),
		limiter: rate.NewLimiter(rate.Every(DefaultPushInterval), 1),
		notify:  make(chan struct{}, 1),
		doc:     emptyDocument,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleDocument)
	s.mux.HandleFunc("GET /raw", s.handleRaw)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(),
	)(s.mux)
}

// ============================================================================
// PUBLISHING
// ============================================================================

// Publish replaces the served document and schedules a reload push.
// Identical documents are ignored; an empty one restores the placeholder.
func (s *Server) Publish(doc string) {
	if doc == "" {
		doc = emptyDocument
	}
	s.mu.Lock()
	if doc == s.doc {
		s.mu.Unlock()
		return
	}
	s.doc = doc
	s.version++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Document returns the current document and its version.
func (s *Server) Document() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.version
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	return s.hub.len()
}

// pump pushes reload events, coalescing publishes that arrive while the
// limiter holds the next push back.
func (s *Server) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		_, version := s.Document()
		n := s.hub.broadcast(Event{Type: "reload", Version: version})
		log.Debug().Uint64("version", version).Int("clients", n).Msg("preview reload pushed")
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, version := s.Document()
	writeDocument(w, InjectReload(doc, version))
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	doc, _ := s.Document()
	writeDocument(w, doc)
}

func writeDocument(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", sandboxPolicy)
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("preview websocket upgrade failed")
		return
	}
	_, version := s.Document()
	c := &client{conn: conn, send: make(chan Event, wsSendQueue)}
	c.send <- Event{Type: "hello", Version: version}
	s.hub.add(c)

	go c.writePump()
	c.readPump()
	s.hub.remove(c)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, version := s.Document()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": version,
		"clients": s.hub.len(),
	})
}

// checkOrigin accepts same-host pages and the opaque origin a sandboxed
// document reports.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "null" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until ctx is done or
// Shutdown is called. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}

	s.mu.Lock()
	s.url = "http://" + ln.Addr().String() + "/"
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	go s.pump(ctx)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", s.addr).Msg("preview server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	log.Info().Str("url", s.URL()).Msg("preview server started")
	return nil
}

// URL returns the address browsers should open, or "" before Start.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// Shutdown closes client connections and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	s.hub.closeAll()
	return srv.Shutdown(ctx)
}
