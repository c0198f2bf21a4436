// Package websocket implements the server role of RFC 6455 for real-time
// bidirectional communication over a single TCP (or TLS) connection.
//
// The package covers the full protocol surface needed to host game and
// tooling clients:
//   - Opening handshake (HTTP upgrade, Sec-WebSocket-Accept computation)
//   - Frame-level parsing and writing (RFC 6455 Section 5)
//   - Fragmentation and reassembly with a bounded buffer
//   - Control frames (close, ping, pong) and the closing handshake
//   - Client-to-server masking enforcement
//
// RFC Reference: https://datatracker.ietf.org/doc/html/rfc6455
package websocket

// State is the lifecycle state of a connection.
//
// Allowed transitions (RFC 6455 Section 4 and 7):
//
//	Connecting -> Open -> Closing -> Closed
//	Connecting -> Closed            (handshake failure)
//	Open       -> Closed            (abort, transport error)
//
// Once Closed, no frames travel in either direction.
type State int32

const (
	// StateConnecting covers the interval before the 101 response is sent.
	StateConnecting State = iota

	// StateOpen means the handshake completed and data frames may flow.
	StateOpen

	// StateClosing means a close frame was sent or received and the
	// endpoint is waiting for the handshake to complete.
	StateClosing

	// StateClosed means the closing handshake finished or the transport
	// failed. The TCP connection is released.
	StateClosed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// MessageType identifies a complete application message.
//
// The values intentionally match the RFC 6455 data opcodes so a completed
// message carries the opcode of its first fragment.
type MessageType int

const (
	// TextMessage is a UTF-8 text message (opcode 0x1).
	// RFC 6455 Section 8.1: the payload must be valid UTF-8.
	TextMessage MessageType = 1

	// BinaryMessage is an arbitrary binary message (opcode 0x2).
	BinaryMessage MessageType = 2
)

// String returns the message type name.
func (mt MessageType) String() string {
	switch mt {
	case TextMessage:
		return "Text"
	case BinaryMessage:
		return "Binary"
	default:
		return "Unknown"
	}
}

// CloseCode is a WebSocket close status code (RFC 6455 Section 7.4).
type CloseCode int

const (
	// CloseNormalClosure (1000): the purpose of the connection was
	// fulfilled.
	CloseNormalClosure CloseCode = 1000

	// CloseGoingAway (1001): the endpoint is going away, e.g. a server
	// shutting down.
	CloseGoingAway CloseCode = 1001

	// CloseProtocolError (1002): a frame violated the protocol.
	CloseProtocolError CloseCode = 1002

	// CloseUnsupportedData (1003): the endpoint received a data type it
	// cannot accept.
	CloseUnsupportedData CloseCode = 1003

	// CloseNoStatusReceived (1005): reserved; used internally when a close
	// frame carried no status code. Never sent on the wire.
	CloseNoStatusReceived CloseCode = 1005

	// CloseAbnormalClosure (1006): reserved; used internally when the
	// transport dropped without a close frame. Never sent on the wire.
	CloseAbnormalClosure CloseCode = 1006

	// CloseInvalidFramePayloadData (1007): message payload was
	// inconsistent with its type, e.g. invalid UTF-8 in a text message.
	CloseInvalidFramePayloadData CloseCode = 1007

	// ClosePolicyViolation (1008): generic policy violation.
	ClosePolicyViolation CloseCode = 1008

	// CloseMessageTooBig (1009): message exceeded the endpoint's limit.
	CloseMessageTooBig CloseCode = 1009

	// CloseInternalServerErr (1011): the server hit an unexpected
	// condition.
	CloseInternalServerErr CloseCode = 1011
)

// String returns the close code name for logging.
func (cc CloseCode) String() string {
	switch cc {
	case CloseNormalClosure:
		return "Normal Closure"
	case CloseGoingAway:
		return "Going Away"
	case CloseProtocolError:
		return "Protocol Error"
	case CloseUnsupportedData:
		return "Unsupported Data"
	case CloseNoStatusReceived:
		return "No Status Received"
	case CloseAbnormalClosure:
		return "Abnormal Closure"
	case CloseInvalidFramePayloadData:
		return "Invalid Frame Payload Data"
	case ClosePolicyViolation:
		return "Policy Violation"
	case CloseMessageTooBig:
		return "Message Too Big"
	case CloseInternalServerErr:
		return "Internal Server Error"
	default:
		return "Unknown"
	}
}
