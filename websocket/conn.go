package websocket

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"errors"
	"net"
	"sync"
	"time"
	"unicode/utf8"
)

// Default connection limits.
const (
	// defaultMaxMessageSize bounds a reassembled message (16 MiB).
	// Exceeding it fails the connection with 1009.
	defaultMaxMessageSize = 16 * 1024 * 1024

	// defaultCloseTimeout bounds the closing handshake. If the peer never
	// answers our close frame, the TCP connection is torn down anyway.
	defaultCloseTimeout = 5 * time.Second
)

// Conn is one WebSocket connection in the open or closing state.
//
// A Conn tracks the protocol state machine (RFC 6455 Sections 4 and 7),
// reassembles fragmented messages, answers pings, and drives the closing
// handshake. It is intended to be used with a single reader goroutine
// calling ReadMessage in a loop; writes may come from any number of
// goroutines and are serialized internally so frame bytes never
// interleave.
//
// The ordering guarantee for one connection: frames reach the peer in the
// order their writes were accepted, and a close frame is the last frame
// written. Completed messages are surfaced in the order their final
// fragment arrived.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	// client marks a client-role connection (test dialer only). Client
	// frames are masked on write and arrive unmasked from the server.
	client bool

	maxMessageSize int64
	closeTimeout   time.Duration

	// Write path. wroteClose latches once a close frame went out; every
	// later write fails with ErrClosed, which keeps the close frame the
	// last bytes on the wire.
	writeMu    sync.Mutex
	wroteClose bool

	// State machine.
	mu        sync.Mutex
	state     State
	peerCode  CloseCode
	closedCh  chan struct{}
	closeOnce sync.Once

	// Reassembly buffer. Owned by the reader goroutine, no locking.
	fragmentBuf  bytes.Buffer
	fragmentType byte
	inFragment   bool
}

// newConn wraps an upgraded socket. Called by Upgrade after the 101
// response went out, so the connection starts in StateOpen.
func newConn(netConn net.Conn, reader *bufio.Reader, writer *bufio.Writer, client bool) *Conn {
	return &Conn{
		conn:           netConn,
		reader:         reader,
		writer:         writer,
		client:         client,
		maxMessageSize: defaultMaxMessageSize,
		closeTimeout:   defaultCloseTimeout,
		state:          StateOpen,
		closedCh:       make(chan struct{}),
	}
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RemoteAddr returns the peer's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// CloseCode returns the status code carried by the peer's close frame,
// or CloseAbnormalClosure if the transport dropped without one.
func (c *Conn) CloseCode() CloseCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerCode
}

// Done returns a channel closed when the connection reaches StateClosed.
func (c *Conn) Done() <-chan struct{} {
	return c.closedCh
}

// ReadMessage reads the next complete application message.
//
// Control frames are consumed transparently: pings are answered with a
// pong carrying the identical payload, pongs are dropped (no keepalive
// bookkeeping), and a close frame completes or starts the closing
// handshake and surfaces as ErrClosed.
//
// Fragmented messages are reassembled per RFC 6455 Section 5.4; the
// completed message carries the opcode of its first fragment. A text
// message is UTF-8 validated once complete. Protocol violations fail the
// connection with the appropriate status code (1002, 1007, or 1009) and
// surface the sentinel error.
func (c *Conn) ReadMessage() (MessageType, []byte, error) {
	if c.State() == StateClosed {
		return 0, nil, ErrClosed
	}

	for {
		f, err := readFrame(c.reader, !c.client, c.maxMessageSize)
		if err != nil {
			if isProtocolViolation(err) {
				c.fail(closeCodeFor(err), "")
			} else {
				// Transport error: no close handshake, just release
				// the socket.
				c.abort()
			}
			return 0, nil, err
		}

		switch f.opcode {
		case opcodePing:
			// RFC 6455 Section 5.5.3: echo the ping's application data.
			if err := c.writeControl(opcodePong, f.payload); err != nil {
				c.abort()
				return 0, nil, err
			}
			continue

		case opcodePong:
			// Unsolicited or answering nothing we track.
			continue

		case opcodeClose:
			return 0, nil, c.handlePeerClose(f.payload)

		case opcodeText, opcodeBinary:
			if c.inFragment {
				c.fail(CloseProtocolError, "data frame inside fragmented message")
				return 0, nil, ErrFragmentedMessageOpen
			}
			if f.fin {
				if f.opcode == opcodeText && !utf8.Valid(f.payload) {
					c.fail(CloseInvalidFramePayloadData, "invalid UTF-8")
					return 0, nil, ErrInvalidUTF8
				}
				return MessageType(f.opcode), f.payload, nil
			}
			c.inFragment = true
			c.fragmentType = f.opcode
			c.fragmentBuf.Reset()
			c.fragmentBuf.Write(f.payload)

		case opcodeContinuation:
			if !c.inFragment {
				c.fail(CloseProtocolError, "unexpected continuation")
				return 0, nil, ErrUnexpectedContinuation
			}
			if int64(c.fragmentBuf.Len())+int64(len(f.payload)) > c.maxMessageSize {
				c.fail(CloseMessageTooBig, "")
				return 0, nil, ErrMessageTooBig
			}
			c.fragmentBuf.Write(f.payload)
			if f.fin {
				c.inFragment = false
				msgType := MessageType(c.fragmentType)
				payload := make([]byte, c.fragmentBuf.Len())
				copy(payload, c.fragmentBuf.Bytes())
				if msgType == TextMessage && !utf8.Valid(payload) {
					c.fail(CloseInvalidFramePayloadData, "invalid UTF-8")
					return 0, nil, ErrInvalidUTF8
				}
				return msgType, payload, nil
			}
		}
	}
}

// ReadText reads the next message and requires it to be text.
func (c *Conn) ReadText() (string, error) {
	msgType, data, err := c.ReadMessage()
	if err != nil {
		return "", err
	}
	if msgType != TextMessage {
		return "", ErrUnsupportedData
	}
	return string(data), nil
}

// WriteMessage writes one unfragmented message.
//
// Server frames are never masked, client (test dialer) frames always are
// (RFC 6455 Section 5.1). Outbound messages are not fragmented; the
// payloads this server emits are small JSON envelopes.
func (c *Conn) WriteMessage(messageType MessageType, data []byte) error {
	if c.State() != StateOpen {
		return ErrClosed
	}

	var opcode byte
	switch messageType {
	case TextMessage:
		opcode = opcodeText
		if !utf8.Valid(data) {
			return ErrInvalidUTF8
		}
	case BinaryMessage:
		opcode = opcodeBinary
	default:
		return ErrUnsupportedData
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.wroteClose {
		return ErrClosed
	}
	return writeFrame(c.writer, c.newFrame(opcode, data))
}

// WriteText writes one text message with FIN=1.
func (c *Conn) WriteText(text string) error {
	return c.WriteMessage(TextMessage, []byte(text))
}

// Ping sends a ping control frame (payload at most 125 bytes).
func (c *Conn) Ping(data []byte) error {
	if c.State() != StateOpen {
		return ErrClosed
	}
	if len(data) > maxControlPayload {
		return ErrControlTooLarge
	}
	return c.writeControl(opcodePing, data)
}

// Close performs the closing handshake (RFC 6455 Section 7.1.2).
//
// The first call sends a close frame with the given status code and
// optional UTF-8 reason, moves the connection to StateClosing, and waits
// up to the close timeout for the peer's answering close frame (observed
// by the reader goroutine). Whether or not the peer answers, the TCP
// connection is released before Close returns. Subsequent calls are
// no-ops that wait for the same completion.
func (c *Conn) Close(code CloseCode, reason string) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return nil
	case StateClosing:
		// Handshake already in flight; wait for it to finish.
		c.mu.Unlock()
		c.awaitClosed()
		c.abort()
		return nil
	}
	c.state = StateClosing
	c.mu.Unlock()

	err := c.writeControl(opcodeClose, closePayload(code, reason))

	// Bound the reader: if the peer never answers, its pending read
	// fails once the deadline passes.
	_ = c.conn.SetReadDeadline(time.Now().Add(c.closeTimeout))

	c.awaitClosed()
	c.abort()
	return err
}

// handlePeerClose processes an inbound close frame.
//
// If we were open, the frame is echoed back (completing the peer's
// handshake) and the connection is released. If we were already closing,
// this is the answer to our own close frame. Either way the state is
// Closed afterwards.
func (c *Conn) handlePeerClose(payload []byte) error {
	code := CloseNoStatusReceived
	if len(payload) >= 2 {
		code = CloseCode(uint16(payload[0])<<8 | uint16(payload[1]))
	}

	c.mu.Lock()
	c.peerCode = code
	wasOpen := c.state == StateOpen
	if wasOpen {
		c.state = StateClosing
	}
	c.mu.Unlock()

	if wasOpen {
		// Echo the status code back per RFC 6455 Section 5.5.1.
		_ = c.writeControl(opcodeClose, payload)
	}
	c.abort()
	return ErrClosed
}

// fail sends a close frame with the given code (best effort) and releases
// the connection immediately. Used for protocol violations, where waiting
// for the peer's answer is pointless.
func (c *Conn) fail(code CloseCode, reason string) {
	c.mu.Lock()
	open := c.state == StateOpen
	if open {
		c.state = StateClosing
	}
	c.mu.Unlock()

	if open {
		_ = c.writeControl(opcodeClose, closePayload(code, reason))
	}
	c.abort()
}

// abort releases the TCP connection and finalizes the state machine.
// Idempotent; every termination path funnels through here.
func (c *Conn) abort() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		c.mu.Lock()
		if c.peerCode == 0 {
			c.peerCode = CloseAbnormalClosure
		}
		c.state = StateClosed
		c.mu.Unlock()
		close(c.closedCh)
	})
}

// awaitClosed blocks until the reader observes the peer's close frame (or
// the transport drops), bounded by the close timeout.
func (c *Conn) awaitClosed() {
	select {
	case <-c.closedCh:
	case <-time.After(c.closeTimeout):
	}
}

// writeControl writes one control frame under the write lock. A close
// frame latches wroteClose so nothing follows it on the wire.
func (c *Conn) writeControl(opcode byte, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.wroteClose {
		return ErrClosed
	}
	if opcode == opcodeClose {
		c.wroteClose = true
	}
	return writeFrame(c.writer, c.newFrame(opcode, payload))
}

// newFrame builds an outbound frame, masking it when in client role.
func (c *Conn) newFrame(opcode byte, payload []byte) *frame {
	f := &frame{
		fin:     true,
		opcode:  opcode,
		masked:  c.client,
		payload: payload,
	}
	if f.masked {
		// Masking keys need no cryptographic strength, but must not be
		// predictable by the server (RFC 6455 Section 5.3).
		_, _ = rand.Read(f.mask[:])
	}
	return f
}

// closePayload encodes a close frame body: 2-byte big-endian status code
// followed by an optional UTF-8 reason, truncated to fit the 125-byte
// control frame limit.
func closePayload(code CloseCode, reason string) []byte {
	if len(reason) > maxControlPayload-2 {
		reason = reason[:maxControlPayload-2]
	}
	payload := make([]byte, 2+len(reason))
	payload[0] = byte(code >> 8)
	payload[1] = byte(code & 0xFF)
	copy(payload[2:], reason)
	return payload
}

// isProtocolViolation reports whether err is a frame-level violation that
// warrants an outbound close frame, as opposed to a transport failure.
func isProtocolViolation(err error) bool {
	for _, sentinel := range []error{
		ErrReservedBits,
		ErrInvalidOpcode,
		ErrInvalidLength,
		ErrControlFragmented,
		ErrControlTooLarge,
		ErrUnmaskedFrame,
		ErrUnexpectedContinuation,
		ErrFragmentedMessageOpen,
		ErrInvalidUTF8,
		ErrMessageTooBig,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
