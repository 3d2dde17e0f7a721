package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/KilimcininKorOglu/ldapwire/internal/config"
	"github.com/KilimcininKorOglu/ldapwire/internal/ldap"
	"github.com/KilimcininKorOglu/ldapwire/internal/logging"
)

// Server errors
var (
	// ErrServerClosed is returned by Serve after Shutdown
	ErrServerClosed = errors.New("server: closed")
	// ErrAlreadyRunning is returned when Serve is called twice
	ErrAlreadyRunning = errors.New("server: already running")
)

// Server accepts LDAP connections and runs one Connection per client.
type Server struct {
	// Handler answers decoded requests
	Handler *Handler
	// Logger is the server's logger
	Logger logging.Logger

	config *config.Config

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Connection]struct{}
	// slots limits concurrent connections; nil means unlimited
	slots   chan struct{}
	running atomic.Bool
	closing atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a Server. Nil arguments are replaced by the default
// configuration, the default handler and a no-op logger.
func NewServer(cfg *config.Config, handler *Handler, logger logging.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if handler == nil {
		handler = NewHandler()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		Handler: handler,
		Logger:  logger,
		config:  cfg,
		conns:   make(map[*Connection]struct{}),
	}
	if cfg.Server.MaxConnections > 0 {
		s.slots = make(chan struct{}, cfg.Server.MaxConnections)
	}
	return s
}

// newDecoder creates the per-connection decoder with the codec limits.
func (s *Server) newDecoder() *ldap.Container {
	return ldap.NewContainer(
		ldap.WithMaxMessageSize(s.config.Codec.MaxMessageSize),
		ldap.WithMaxDepth(s.config.Codec.MaxDepth),
	)
}

// ListenAndServe listens on the configured address and serves connections
// until Shutdown is called.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.config.Server.Address)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener until Shutdown is called. It
// always returns a non-nil error; after Shutdown it is ErrServerClosed.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.running.Load() {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.closing.Load() {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.running.Store(true)
	s.mu.Unlock()

	s.Logger.Info("LDAP listener started", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.Logger.Warn("accept error", "error", err.Error())
				continue
			}
			return err
		}

		if !s.acquire() {
			s.reject(conn)
			continue
		}

		c := NewConnection(conn, s)
		if !s.track(c) {
			s.release()
			c.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			defer s.release()
			c.Handle()
		}()
	}
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections, tells every client that the server
// is going away and waits for the connection goroutines to finish or ctx to
// expire. Each client gets a graceful disconnect notice carrying
// server.shutdown, then a Notice of Disconnection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}
	conns := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	graceful, err := ldap.NewGracefulDisconnect(&ldap.GracefulDisconnect{
		TimeOffline: s.config.Server.Shutdown.TimeOffline,
		Delay:       s.config.Server.Shutdown.Delay,
	})
	if err != nil {
		s.Logger.Warn("graceful disconnect not built", "error", err.Error())
	}
	notice := ldap.NewNoticeOfDisconnect(ldap.ResultUnavailable, "server shutting down")
	for _, c := range conns {
		if graceful != nil {
			if err := c.WriteMessage(graceful); err != nil {
				c.logger.Debug("graceful disconnect not sent", "error", err.Error())
			}
		}
		if err := c.WriteMessage(notice); err != nil {
			c.logger.Debug("notice of disconnection not sent", "error", err.Error())
		}
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.Logger.Info("LDAP listener stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acquire() bool {
	if s.slots == nil {
		return true
	}
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Server) release() {
	if s.slots != nil {
		<-s.slots
	}
}

// reject answers a connection over the limit with busy and closes it.
func (s *Server) reject(conn net.Conn) {
	s.Logger.Warn("connection limit reached",
		"client", conn.RemoteAddr().String(),
		"max_connections", s.config.Server.MaxConnections)

	c := &Connection{conn: conn, logger: s.Logger, writeTimeout: s.config.Server.WriteTimeout}
	_ = c.WriteMessage(ldap.NewNoticeOfDisconnect(ldap.ResultBusy, "too many connections"))
	c.Close()
}

func (s *Server) track(c *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}
