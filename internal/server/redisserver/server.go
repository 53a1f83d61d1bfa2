// Package redisserver provides a Redis protocol compatible server for Synap.
//
// This package implements a subset of the Redis RESP protocol using only the Go standard library.
package redisserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hivellm/synap/internal/engine/pubsub"
)

// Config holds the Redis server configuration.
type Config struct {
	// PlainEnabled enables the plaintext Redis port (default: false for security).
	PlainEnabled bool
	// PlainAddress is the address for the plaintext Redis port.
	PlainAddress string
	// TLSEnabled enables the TLS Redis port.
	TLSEnabled bool
	// TLSAddress is the address for the TLS Redis port.
	TLSAddress string
	// TLSConfig is the TLS configuration (required if TLSEnabled is true).
	TLSConfig *tls.Config
	// ReadTimeout is the timeout for reading a command (default: 30s).
	// Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per IP (default: 1000).
	// Set to 0 to disable rate limiting.
	RateLimit int
	// MaxBulkLen caps the size of a single RESP bulk-string argument. Should
	// be set from cfg.KV.MaxValueBytes so the wire protocol's limit matches
	// the KV engine's actual max-value-size contract (default: MaxBulkLen).
	MaxBulkLen int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PlainEnabled: false,
		PlainAddress: "127.0.0.1:6379",
		TLSEnabled:   false,
		TLSAddress:   "127.0.0.1:6380",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    1000, // 1000 commands per second per IP
		MaxBulkLen:   MaxBulkLen,
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg        *Config
	handler    *CommandHandler
	logger     *slog.Logger
	plainLn    net.Listener
	tlsLn      net.Listener
	running    atomic.Bool
	wg         sync.WaitGroup

	connSeq atomic.Uint64
}

// ConnState holds the state of a client connection.
type ConnState struct {
	Authenticated bool
}

// Conn represents a single Redis client connection.
type Conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	bwMu    sync.Mutex // guards bw against the pub/sub pump writing concurrently

	stateMu sync.RWMutex
	state   ConnState

	pumpOnce sync.Once

	closed atomic.Bool
}

func newConn(c net.Conn, id string) *Conn {
	return &Conn{
		id:      id,
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
	}
}

// subscriberID and clientID identify this connection to the pub/sub router
// and the transaction coordinator respectively. Both are this connection's
// unique sequence-derived ID: one connection is one subscriber and one
// transaction client.
func (c *Conn) subscriberID() string { return c.id }
func (c *Conn) clientID() string     { return c.id }

// startPubSubPump forwards ch's deliveries to the client as out-of-band
// RESP push arrays, serialized against command responses via bwMu. Router
// returns the same channel for every Subscribe call from this connection,
// so the sync.Once only ever starts one pump goroutine per connection.
func (c *Conn) startPubSubPump(ch <-chan pubsub.Message) {
	c.pumpOnce.Do(func() {
		go func() {
			for msg := range ch {
				c.bwMu.Lock()
				_ = WriteArrayHeader(c.bw, 3)
				_ = WriteBulkString(c.bw, "message")
				_ = WriteBulkString(c.bw, msg.Topic)
				_ = WriteBulk(c.bw, msg.Payload)
				_ = c.bw.Flush()
				c.bwMu.Unlock()
			}
		}()
	})
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

func (c *Conn) GetState() *ConnState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	st := c.state
	return &st
}

func (c *Conn) SetState(st ConnState) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state = st
}

// New creates a new Redis protocol server dispatching against engines.
func New(cfg *Config, engines Engines, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBulkLen <= 0 {
		cfg.MaxBulkLen = MaxBulkLen
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	s.handler = NewCommandHandler(engines, s, logger)

	return s
}

// Start starts the Redis server.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.PlainEnabled && !s.cfg.TLSEnabled {
		s.logger.Info("redis server disabled (both plain and TLS are disabled)")
		return nil
	}

	s.running.Store(true)

	// Start plain server if enabled
	if s.cfg.PlainEnabled {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.startPlain(ctx); err != nil && s.running.Load() {
				s.logger.Error("plain redis server error", "error", err)
			}
		}()
	}

	// Start TLS server if enabled
	if s.cfg.TLSEnabled {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.startTLS(ctx); err != nil && s.running.Load() {
				s.logger.Error("tls redis server error", "error", err)
			}
		}()
	}

	return nil
}

// startPlain starts the plaintext Redis server.
func (s *Server) startPlain(ctx context.Context) error {
	s.logger.Info("starting plain redis server", "address", s.cfg.PlainAddress)
	ln, err := net.Listen("tcp", s.cfg.PlainAddress)
	if err != nil {
		return err
	}
	s.plainLn = ln
	return s.acceptLoop(ctx, ln)
}

// startTLS starts the TLS Redis server.
func (s *Server) startTLS(ctx context.Context) error {
	if s.cfg.TLSConfig == nil {
		s.logger.Error("TLS config is required for TLS server")
		return nil
	}

	s.logger.Info("starting TLS redis server", "address", s.cfg.TLSAddress)
	ln, err := tls.Listen("tcp", s.cfg.TLSAddress, s.cfg.TLSConfig)
	if err != nil {
		return err
	}
	s.tlsLn = ln
	return s.acceptLoop(ctx, ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error

	// Close listeners to break accept loops.
	if s.plainLn != nil {
		if err := s.plainLn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.tlsLn != nil {
		if err := s.tlsLn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Wait for goroutines to finish
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		connID := fmt.Sprintf("conn-%d", s.connSeq.Add(1))
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, newConn(c, connID))
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()
	defer s.handler.engines.PubSub.Disconnect(c.subscriberID())

	// Helper to set deadline with fallback to defaults
	readTimeout := s.cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 5 * time.Minute
	}

	for {
		// First byte: allow idle timeout (connection can stay idle between commands).
		if err := c.netConn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Debug("connection timed out", "remote", c.RemoteAddr())
				return
			}
			s.logger.Debug("connection read error", "remote", c.RemoteAddr(), "error", err)
			return
		}

		// After first byte: tighten to per-command read timeout (slowloris protection).
		if err := c.netConn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		args, err := ReadCommand(c.br, s.cfg.MaxBulkLen)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			// Check for timeout
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Debug("connection timed out", "remote", c.RemoteAddr())
				return
			}
			// Check for limit exceeded (potential attack)
			if errors.Is(err, ErrLimitExceeded) {
				s.logger.Warn("protocol limit exceeded", "remote", c.RemoteAddr(), "error", err)
				_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.bwMu.Lock()
				_ = WriteError(c.bw, "ERR protocol limit exceeded")
				_ = c.bw.Flush()
				c.bwMu.Unlock()
				return // Close connection on limit violation
			}
			_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.bwMu.Lock()
			_ = WriteError(c.bw, "ERR protocol error: "+err.Error())
			_ = c.bw.Flush()
			c.bwMu.Unlock()
			return
		}

		if len(args) == 0 {
			_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.bwMu.Lock()
			_ = WriteError(c.bw, "ERR no command")
			_ = c.bw.Flush()
			c.bwMu.Unlock()
			continue
		}

		_ = ctx // reserved for future cancellation integration
		c.bwMu.Lock()
		s.handler.Handle(c, args)

		// Set write deadline before flushing response
		if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			c.bwMu.Unlock()
			return
		}
		if err := c.bw.Flush(); err != nil {
			c.bwMu.Unlock()
			return
		}
		c.bwMu.Unlock()
	}
}
