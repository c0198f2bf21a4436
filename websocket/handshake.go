package websocket

import (
	"bufio"
	"crypto/sha1" // #nosec G505 - SHA-1 is mandated by RFC 6455 Section 1.3
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// websocketGUID is the magic GUID of RFC 6455 Section 1.3, concatenated
// with the client key when computing Sec-WebSocket-Accept.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// Default buffer sizes for upgraded connections.
const (
	defaultReadBufferSize  = 4096
	defaultWriteBufferSize = 4096
)

// UpgradeOptions configures the upgrade and the resulting connection.
// The zero value uses the defaults.
type UpgradeOptions struct {
	// CheckOrigin verifies the Origin header. nil allows every origin,
	// which matches how the Minecraft client connects (it sends no
	// browser origin).
	CheckOrigin func(*http.Request) bool

	// ReadBufferSize and WriteBufferSize size the connection's buffered
	// reader and writer (default 4096 each).
	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize bounds a reassembled inbound message in bytes
	// (default 16 MiB). Exceeding it fails the connection with 1009.
	MaxMessageSize int64

	// CloseTimeout bounds the closing handshake (default 5s).
	CloseTimeout time.Duration
}

// Upgrade upgrades an HTTP request to the WebSocket protocol.
//
// Implements the server side of the opening handshake (RFC 6455
// Section 4.2):
//
//  1. The method must be GET on HTTP/1.1 or later, with a Host header.
//  2. Upgrade must contain the "websocket" token (case-insensitive).
//  3. Connection must contain the "Upgrade" token (list-parsed,
//     case-insensitive).
//  4. Sec-WebSocket-Version must be 13; anything else is answered with
//     426 Upgrade Required by Handler.
//  5. Sec-WebSocket-Key must base64-decode to exactly 16 bytes.
//
// Sub-protocol negotiation is intentionally absent: if the client sends
// Sec-WebSocket-Protocol, the server does not echo it.
//
// On success the 101 response is written, the connection is hijacked, and
// the returned Conn is in StateOpen.
func Upgrade(w http.ResponseWriter, r *http.Request, opts *UpgradeOptions) (*Conn, error) {
	if opts == nil {
		opts = &UpgradeOptions{}
	}
	if opts.ReadBufferSize == 0 {
		opts.ReadBufferSize = defaultReadBufferSize
	}
	if opts.WriteBufferSize == 0 {
		opts.WriteBufferSize = defaultWriteBufferSize
	}

	if r.Method != http.MethodGet {
		return nil, ErrBadHandshakeMethod
	}
	if !r.ProtoAtLeast(1, 1) {
		return nil, ErrBadHTTPVersion
	}
	if r.Host == "" {
		return nil, ErrMissingHost
	}

	if !headerContainsToken(r.Header.Get("Upgrade"), "websocket") {
		return nil, ErrMissingUpgrade
	}
	if !headerContainsToken(r.Header.Get("Connection"), "upgrade") {
		return nil, ErrMissingConnection
	}

	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, ErrUnsupportedVersion
	}

	key := r.Header.Get("Sec-WebSocket-Key")
	if !validSecKey(key) {
		return nil, ErrInvalidSecKey
	}

	if opts.CheckOrigin != nil && !opts.CheckOrigin(r) {
		return nil, ErrOriginDenied
	}

	accept := computeAcceptKey(key)

	w.Header().Set("Upgrade", "websocket")
	w.Header().Set("Connection", "Upgrade")
	w.Header().Set("Sec-WebSocket-Accept", accept)
	w.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		return nil, ErrHijackFailed
	}
	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		return nil, err
	}

	// Make sure the 101 actually went out before frames flow.
	if err := bufrw.Flush(); err != nil {
		_ = netConn.Close()
		return nil, err
	}

	// Reuse the hijacked reader if it is large enough; bytes the client
	// pipelined after the handshake may already sit in it.
	var reader *bufio.Reader
	if bufrw.Reader.Size() >= opts.ReadBufferSize {
		reader = bufrw.Reader
	} else {
		reader = bufio.NewReaderSize(netConn, opts.ReadBufferSize)
	}
	writer := bufio.NewWriterSize(netConn, opts.WriteBufferSize)

	conn := newConn(netConn, reader, writer, false)
	if opts.MaxMessageSize > 0 {
		conn.maxMessageSize = opts.MaxMessageSize
	}
	if opts.CloseTimeout > 0 {
		conn.closeTimeout = opts.CloseTimeout
	}
	return conn, nil
}

// Handler adapts a connection callback into an http.Handler that performs
// the upgrade and writes the failure response itself: 426 with the
// supported version advertised for a version mismatch, 400 for everything
// else (RFC 6455 Section 4.2.2).
func Handler(opts *UpgradeOptions, fn func(*Conn)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r, opts)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnsupportedVersion):
				w.Header().Set("Sec-WebSocket-Version", "13")
				http.Error(w, err.Error(), http.StatusUpgradeRequired)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		fn(conn)
	})
}

// computeAcceptKey derives Sec-WebSocket-Accept from the client key:
//
//	base64(SHA-1(key || "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"))
//
// For the RFC 6455 test vector "dGhlIHNhbXBsZSBub25jZQ==" the result is
// "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=".
func computeAcceptKey(key string) string {
	// #nosec G401 - SHA-1 here is a protocol checksum, not a security
	// primitive.
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// validSecKey reports whether key is base64 for exactly 16 bytes
// (RFC 6455 Section 4.2.1, item 5).
func validSecKey(key string) bool {
	if key == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	return err == nil && len(decoded) == 16
}

// headerContainsToken reports whether a comma-separated header value
// contains token, compared case-insensitively (RFC 6455 Section 4.2.1).
func headerContainsToken(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
