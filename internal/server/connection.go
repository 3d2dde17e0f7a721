package server

import (
	"encoding/hex"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/KilimcininKorOglu/ldapwire/internal/config"
	"github.com/KilimcininKorOglu/ldapwire/internal/ldap"
	"github.com/KilimcininKorOglu/ldapwire/internal/logging"
)

// Connection errors
var (
	// ErrConnectionClosed is returned when writing to a closed connection
	ErrConnectionClosed = errors.New("server: connection closed")
)

// Connection drives one client connection: it feeds the bytes read from the
// network into an incremental decoder, dispatches every completed message
// and writes the responses back.
type Connection struct {
	conn    net.Conn
	server  *Server
	handler *Handler
	decoder *ldap.Container
	logger  logging.Logger

	requestID string
	startTime time.Time

	readTimeout    time.Duration
	writeTimeout   time.Duration
	readBufferSize int

	// mu protects closed and bindDN
	mu     sync.Mutex
	closed bool
	bindDN string

	// wmu serializes writes
	wmu sync.Mutex
}

// NewConnection creates a new Connection for the given network connection.
// A nil server yields default limits, the default handler and no logging.
func NewConnection(conn net.Conn, server *Server) *Connection {
	if server == nil {
		server = NewServer(nil, nil, nil)
	}

	requestID := logging.GenerateRequestID()

	return &Connection{
		conn:           conn,
		server:         server,
		handler:        server.Handler,
		decoder:        server.newDecoder(),
		logger:         server.Logger.WithRequestID(requestID).WithFields("client", conn.RemoteAddr().String()),
		requestID:      requestID,
		startTime:      time.Now(),
		readTimeout:    server.config.Server.ReadTimeout,
		writeTimeout:   server.config.Server.WriteTimeout,
		readBufferSize: server.config.Server.ReadBufferSize,
	}
}

// Handle is the main message loop for the connection.
// It blocks until the client unbinds, the stream ends, a protocol error
// occurs or the connection is closed.
func (c *Connection) Handle() {
	c.logger.Info("connection established")

	defer func() {
		c.logger.Info("connection closed",
			"duration_ms", time.Since(c.startTime).Milliseconds())
		c.Close()
	}()

	size := c.readBufferSize
	if size <= 0 {
		size = config.DefaultReadBufferSize
	}
	buf := make([]byte, size)
	for {
		if c.readTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}

		n, err := c.conn.Read(buf)
		if n > 0 && !c.feed(buf[:n]) {
			return
		}
		if err == nil {
			continue
		}

		switch {
		case c.isClosed() || errors.Is(err, net.ErrClosed):
		case errors.Is(err, io.EOF):
			if ferr := c.decoder.Finish(); ferr != nil {
				c.logger.Warn("stream ended inside a message", "error", ferr.Error())
			}
		default:
			c.logger.Warn("network error", "error", err.Error())
		}
		return
	}
}

// feed decodes a chunk and processes every message it completes. It
// returns false when the connection must be closed.
func (c *Connection) feed(chunk []byte) bool {
	res, err := c.decoder.Decode(chunk)
	for {
		if err != nil {
			c.protocolError(err)
			return false
		}
		if res.Status == ldap.NeedMoreData {
			return true
		}
		if !c.process(res.Message) {
			return false
		}
		res, err = c.decoder.Decode(nil)
	}
}

// process handles one decoded message. It returns false after an unbind or
// a failed write.
func (c *Connection) process(msg *ldap.Message) bool {
	c.logger.Debug("message decoded",
		"message_id", msg.MessageID,
		"op", msg.OperationType().String())

	if _, ok := msg.Op.(*ldap.UnbindRequest); ok {
		c.logger.Debug("unbind request received", "message_id", msg.MessageID)
		return false
	}

	for _, op := range c.handler.Dispatch(c, msg) {
		resp := &ldap.Message{MessageID: msg.MessageID, Op: op}
		if err := c.WriteMessage(resp); err != nil {
			c.logger.Warn("write error", "error", err.Error())
			return false
		}
	}
	return true
}

// protocolError reports a decoding failure with a Notice of Disconnection.
func (c *Connection) protocolError(err error) {
	fields := []interface{}{"error", err.Error()}
	var derr *ldap.DecodeError
	if errors.As(err, &derr) {
		fields = append(fields, "offset", derr.Offset)
	}
	c.logger.Warn("protocol error", fields...)

	if werr := c.WriteMessage(ldap.NewNoticeOfDisconnect(ldap.ResultProtocolError, err.Error())); werr != nil {
		c.logger.Debug("notice of disconnection not sent", "error", werr.Error())
	}
}

// WriteMessage encodes msg and writes it to the connection.
func (c *Connection) WriteMessage(msg *ldap.Message) error {
	if c.isClosed() {
		return ErrConnectionClosed
	}

	data, err := msg.Encode()
	if err != nil {
		return err
	}

	if c.logger.DebugEnabled() {
		c.logger.Debug("Encoded PDU",
			"message_id", msg.MessageID,
			"op", msg.OperationType().String(),
			"hex", hex.EncodeToString(data))
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err = c.conn.Write(data)
	return err
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return c.conn.Close()
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// BindDN returns the DN of the last successful bind, empty for anonymous.
func (c *Connection) BindDN() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindDN
}

func (c *Connection) setBindDN(dn string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindDN = dn
}

// RemoteAddr returns the remote network address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// RequestID returns the identifier used in this connection's log entries.
func (c *Connection) RequestID() string {
	return c.requestID
}

// Logger returns the connection's logger.
func (c *Connection) Logger() logging.Logger {
	return c.logger
}
