package websocket

import "errors"

// Frame and protocol errors. Each maps to the close code the connection
// fails with when the error is detected (RFC 6455 Section 7.4.1).

var (
	// ErrReservedBits: RSV1/RSV2/RSV3 set without a negotiated extension.
	// RFC 6455 Section 5.2. Fails the connection with 1002.
	ErrReservedBits = errors.New("websocket: reserved bits must be 0")

	// ErrInvalidOpcode: a reserved opcode (0x3-0x7, 0xB-0xF).
	// RFC 6455 Section 5.2. Fails the connection with 1002.
	ErrInvalidOpcode = errors.New("websocket: invalid opcode")

	// ErrInvalidLength: an 8-byte extended length with the most
	// significant bit set. RFC 6455 Section 5.2. Fails with 1002.
	ErrInvalidLength = errors.New("websocket: invalid payload length")

	// ErrControlFragmented: a control frame with FIN=0.
	// RFC 6455 Section 5.5. Fails the connection with 1002.
	ErrControlFragmented = errors.New("websocket: control frame must not be fragmented")

	// ErrControlTooLarge: a control frame payload over 125 bytes.
	// RFC 6455 Section 5.5. Fails the connection with 1002.
	ErrControlTooLarge = errors.New("websocket: control frame payload too large")

	// ErrUnmaskedFrame: a client-to-server frame without a masking key.
	// RFC 6455 Section 5.1. Fails the connection with 1002.
	ErrUnmaskedFrame = errors.New("websocket: client frames must be masked")

	// ErrUnexpectedContinuation: a continuation frame with no fragmented
	// message in progress. RFC 6455 Section 5.4. Fails with 1002.
	ErrUnexpectedContinuation = errors.New("websocket: unexpected continuation frame")

	// ErrFragmentedMessageOpen: a new text/binary frame arrived while a
	// fragmented message was still being reassembled.
	// RFC 6455 Section 5.4. Fails the connection with 1002.
	ErrFragmentedMessageOpen = errors.New("websocket: data frame inside fragmented message")

	// ErrInvalidUTF8: a completed text message that is not valid UTF-8.
	// RFC 6455 Section 8.1. Fails the connection with 1007.
	ErrInvalidUTF8 = errors.New("websocket: invalid UTF-8 in text message")

	// ErrMessageTooBig: a frame or reassembled message over the
	// connection limit. Fails the connection with 1009.
	ErrMessageTooBig = errors.New("websocket: message too large")
)

// Handshake errors (RFC 6455 Section 4). Surfaced by Upgrade before the
// connection reaches the open state; the HTTP response is 400, or 426 for
// a version mismatch.

var (
	// ErrBadHandshakeMethod: the request method is not GET.
	ErrBadHandshakeMethod = errors.New("websocket: handshake method must be GET")

	// ErrBadHTTPVersion: the request is not HTTP/1.1 or later.
	ErrBadHTTPVersion = errors.New("websocket: handshake requires HTTP/1.1")

	// ErrMissingHost: the request has no Host header.
	ErrMissingHost = errors.New("websocket: missing Host header")

	// ErrMissingUpgrade: the Upgrade header lacks the "websocket" token.
	ErrMissingUpgrade = errors.New("websocket: missing or invalid Upgrade header")

	// ErrMissingConnection: the Connection header lacks the "Upgrade"
	// token.
	ErrMissingConnection = errors.New("websocket: missing or invalid Connection header")

	// ErrUnsupportedVersion: Sec-WebSocket-Version is not 13. The server
	// answers 426 Upgrade Required advertising version 13.
	ErrUnsupportedVersion = errors.New("websocket: unsupported WebSocket version")

	// ErrInvalidSecKey: Sec-WebSocket-Key is absent or does not decode to
	// exactly 16 bytes of base64.
	ErrInvalidSecKey = errors.New("websocket: missing or invalid Sec-WebSocket-Key header")

	// ErrOriginDenied: the configured origin check rejected the request.
	ErrOriginDenied = errors.New("websocket: origin check failed")

	// ErrHijackFailed: the http.ResponseWriter does not support hijacking.
	ErrHijackFailed = errors.New("websocket: cannot hijack connection")
)

// Runtime errors.

var (
	// ErrClosed: the connection is closed or closing. Reads and writes
	// after the close handshake started return this.
	ErrClosed = errors.New("websocket: connection closed")

	// ErrUnsupportedData: the message type does not fit the operation,
	// e.g. ReadText on a binary message. Maps to close code 1003 when the
	// caller decides to fail the connection over it.
	ErrUnsupportedData = errors.New("websocket: unsupported data type")
)

// closeCodeFor maps a protocol error to the status code the connection is
// failed with. Transport errors (EOF, resets) map to 1006 internally and
// never produce an outbound close frame.
func closeCodeFor(err error) CloseCode {
	switch {
	case errors.Is(err, ErrInvalidUTF8):
		return CloseInvalidFramePayloadData
	case errors.Is(err, ErrMessageTooBig):
		return CloseMessageTooBig
	default:
		return CloseProtocolError
	}
}

// IsCloseError reports whether err means the peer completed or started the
// closing handshake, as opposed to a transport or protocol failure.
func IsCloseError(err error) bool {
	return err != nil && errors.Is(err, ErrClosed)
}
