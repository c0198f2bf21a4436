package bedrock

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gravitational/trace"
	"golang.org/x/sync/errgroup"

	"github.com/coregx/bedrock/websocket"
)

// Config configures a Server. The zero value is usable: it binds
// localhost:8765, the address the Minecraft client's /wsserver command
// reaches by default.
type Config struct {
	// Host is the bind address (default "localhost").
	Host string

	// Port is the TCP port (default 8765).
	Port int

	// TLSConfig, when set, wraps accepted sockets before the HTTP
	// handshake.
	TLSConfig *tls.Config

	// Logger receives diagnostics (default slog.Default()).
	Logger *slog.Logger

	// CommandTimeout bounds one command round-trip (default 10s).
	CommandTimeout time.Duration

	// CloseTimeout bounds the websocket closing handshake (default 5s).
	CloseTimeout time.Duration

	// MaxMessageSize bounds a reassembled inbound message
	// (default 16 MiB).
	MaxMessageSize int64

	// ShutdownGrace bounds graceful shutdown; sessions still open after
	// it are force-closed (default 10s).
	ShutdownGrace time.Duration
}

// CheckAndSetDefaults validates the configuration and fills in defaults.
func (c *Config) CheckAndSetDefaults() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8765
	}
	if c.Port < 0 || c.Port > 65535 {
		return trace.BadParameter("invalid port %d", c.Port)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = defaultCommandTimeout
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = 5 * time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 16 * 1024 * 1024
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = 10 * time.Second
	}
	return nil
}

// HandlerOption adjusts one handler registration.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	autoSubscribe bool
}

// WithoutAutoSubscribe registers the handler without subscribing new
// sessions to its event; the handler only fires if something subscribes
// explicitly.
func WithoutAutoSubscribe() HandlerOption {
	return func(o *handlerOptions) { o.autoSubscribe = false }
}

// Server accepts game clients and runs one Session per connection.
//
// Register handlers with On before ListenAndServe; each new session is
// subscribed to every event name that has at least one auto-subscribing
// handler.
type Server struct {
	cfg      Config
	log      *slog.Logger
	registry *Registry

	mu       sync.Mutex
	sessions map[*Session]struct{}
	httpSrv  *http.Server
	addr     net.Addr
}

// New creates a Server from cfg.
func New(cfg Config) (*Server, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Server{
		cfg:      cfg,
		log:      cfg.Logger,
		registry: NewRegistry(),
		sessions: make(map[*Session]struct{}),
	}, nil
}

// On registers handler for the named event. Handlers auto-subscribe their
// event on every new session unless WithoutAutoSubscribe is given.
// Registering the same function twice for one event stores it once.
func (s *Server) On(event string, handler HandlerFunc, opts ...HandlerOption) {
	options := handlerOptions{autoSubscribe: true}
	for _, opt := range opts {
		opt(&options)
	}
	if !IsKnownEvent(event) {
		s.log.Warn("registering handler for unknown event", "event", event)
	}
	s.registry.Register(event, handler, options.autoSubscribe)
}

// Addr returns the listener address once the server is serving, which is
// how callers learn the port when configured with an ephemeral one.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Sessions returns a snapshot of the live sessions.
func (s *Server) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled. Wire ctx to signal.NotifyContext(ctx, SIGINT, SIGTERM) to
// get graceful shutdown on signals.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return trace.Wrap(err)
	}
	if s.cfg.TLSConfig != nil {
		ln = tls.NewListener(ln, s.cfg.TLSConfig)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled, then shuts
// down gracefully: the listener closes, every live session gets a close
// frame with code 1001 (going away), pending command waiters fail with a
// session-closed error, and in-flight handlers are cancelled. Sessions
// still open after the grace period are force-closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	upgradeOpts := &websocket.UpgradeOptions{
		MaxMessageSize: s.cfg.MaxMessageSize,
		CloseTimeout:   s.cfg.CloseTimeout,
	}
	httpSrv := &http.Server{
		Handler:           websocket.Handler(upgradeOpts, s.handleConn),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpSrv = httpSrv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.log.Info("server listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := httpSrv.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			return trace.Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})
	return trace.Wrap(g.Wait())
}

// handleConn runs one upgraded connection to completion. It executes on
// the HTTP server's per-connection goroutine.
func (s *Server) handleConn(conn *websocket.Conn) {
	sess := newSession(conn, s.registry, s.log, s.cfg.CommandTimeout)

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
	}()

	sess.log.Info("client connected", "remote", conn.RemoteAddr().String())

	for _, event := range s.registry.AutoSubscribed() {
		if err := sess.Subscribe(event); err != nil {
			sess.log.Warn("auto-subscribe failed", "event", event, "error", err)
		}
	}

	if err := sess.readLoop(); err != nil {
		sess.log.Warn("session ended with error", "error", err)
	}
	if err := sess.Close(websocket.CloseNormalClosure); err != nil {
		sess.log.Debug("session close", "error", err)
	}

	sess.log.Info("client disconnected")
}

// shutdown stops the accept loop and closes every live session with 1001,
// bounded by the grace period.
func (s *Server) shutdown() {
	s.log.Info("shutting down")

	s.mu.Lock()
	httpSrv := s.httpSrv
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	// Stop accepting. Upgraded connections are hijacked, so the HTTP
	// server has nothing more to wait for.
	if httpSrv != nil {
		_ = httpSrv.Close()
	}

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess *Session) {
			defer wg.Done()
			if err := sess.Close(websocket.CloseGoingAway); err != nil {
				s.log.Debug("session close during shutdown",
					"session_id", sess.ID().String(), "error", err)
			}
		}(sess)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("all sessions closed")
	case <-time.After(s.cfg.ShutdownGrace):
		s.log.Warn("shutdown grace period expired")
	}
}
