package websocket

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// Opcode values defined in RFC 6455 Section 5.2.
//
// Opcodes 0x0-0x2 are data frames, 0x8-0xA are control frames.
// Opcodes 0x3-0x7 and 0xB-0xF are reserved for future use.
const (
	// opcodeContinuation continues a fragmented message (RFC 6455 Section 5.4).
	opcodeContinuation = 0x0

	// opcodeText carries UTF-8 text (RFC 6455 Section 5.6).
	opcodeText = 0x1

	// opcodeBinary carries arbitrary binary data (RFC 6455 Section 5.6).
	opcodeBinary = 0x2

	// opcodeClose starts or answers the closing handshake (RFC 6455 Section 5.5.1).
	opcodeClose = 0x8

	// opcodePing requests a pong from the peer (RFC 6455 Section 5.5.2).
	opcodePing = 0x9

	// opcodePong answers a ping, echoing its payload (RFC 6455 Section 5.5.3).
	opcodePong = 0xA
)

// Payload length limits and encoding thresholds.
const (
	// maxControlPayload is the RFC 6455 Section 5.5 limit for control frames.
	maxControlPayload = 125

	// payloadLen16Bit and payloadLen64Bit select the extended length
	// encodings of RFC 6455 Section 5.2.
	payloadLen7Bit  = 125
	payloadLen16Bit = 126
	payloadLen64Bit = 127
)

// isControlFrame reports whether opcode identifies a control frame.
// RFC 6455 Section 5.5: control opcodes have the high bit of the
// 4-bit opcode set.
func isControlFrame(opcode byte) bool {
	return opcode&0x08 != 0
}

// isDataFrame reports whether opcode identifies a data frame
// (continuation, text, or binary).
func isDataFrame(opcode byte) bool {
	return opcode == opcodeContinuation ||
		opcode == opcodeText ||
		opcode == opcodeBinary
}

// isValidOpcode reports whether opcode is one of the six opcodes
// defined by RFC 6455. Opcodes 0x3-0x7 and 0xB-0xF are reserved.
func isValidOpcode(opcode byte) bool {
	switch opcode {
	case opcodeContinuation, opcodeText, opcodeBinary,
		opcodeClose, opcodePing, opcodePong:
		return true
	default:
		return false
	}
}

// frame is one WebSocket frame as defined in RFC 6455 Section 5.2.
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-------+-+-------------+-------------------------------+
//	|F|R|R|R| opcode|M| Payload len |    Extended payload length    |
//	|I|S|S|S|  (4)  |A|     (7)     |             (16/64)           |
//	|N|V|V|V|       |S|             |   (if payload len==126/127)   |
//	| |1|2|3|       |K|             |                               |
//	+-+-+-+-+-------+-+-------------+ - - - - - - - - - - - - - - - +
//	|     Extended payload length continued, if payload len == 127  |
//	+ - - - - - - - - - - - - - - - +-------------------------------+
//	|                               |Masking-key, if MASK set to 1  |
//	+-------------------------------+-------------------------------+
//	| Masking-key (continued)       |          Payload Data         |
//	+-------------------------------- - - - - - - - - - - - - - - - +
type frame struct {
	// fin marks the final fragment of a message.
	fin bool

	// rsv1, rsv2, rsv3 must be zero; no extension is ever negotiated.
	rsv1, rsv2, rsv3 bool

	// opcode is the 4-bit frame type.
	opcode byte

	// masked reports whether payload was (or will be) XOR-masked.
	// RFC 6455 Section 5.3: client-to-server frames MUST be masked,
	// server-to-client frames MUST NOT be.
	masked bool

	// mask is the 4-byte masking key, meaningful only when masked.
	mask [4]byte

	// payload is the unmasked application or control data.
	payload []byte
}

// readFrame reads and validates one frame from the buffered reader.
//
// requireMask enforces the server-role rule of RFC 6455 Section 5.1:
// every frame arriving from a client must carry a masking key. A bare
// frame is a protocol violation and the connection must be failed with
// status 1002.
//
// The payload is returned already unmasked. maxPayload bounds a single
// frame; message-level bounds are enforced by the reassembly layer.
func readFrame(r *bufio.Reader, requireMask bool, maxPayload int64) (*frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	f := &frame{
		fin:    header[0]&0x80 != 0,
		rsv1:   header[0]&0x40 != 0,
		rsv2:   header[0]&0x20 != 0,
		rsv3:   header[0]&0x10 != 0,
		opcode: header[0] & 0x0F,
		masked: header[1]&0x80 != 0,
	}

	if !isValidOpcode(f.opcode) {
		return nil, fmt.Errorf("%w: 0x%X", ErrInvalidOpcode, f.opcode)
	}

	// RFC 6455 Section 5.2: RSV bits are zero unless an extension was
	// negotiated. This server negotiates none.
	if f.rsv1 || f.rsv2 || f.rsv3 {
		return nil, ErrReservedBits
	}

	// RFC 6455 Section 5.5: control frames must not be fragmented.
	if isControlFrame(f.opcode) && !f.fin {
		return nil, ErrControlFragmented
	}

	if requireMask && !f.masked {
		return nil, ErrUnmaskedFrame
	}

	payloadLen := uint64(header[1] & 0x7F)

	switch payloadLen {
	case payloadLen16Bit:
		buf := make([]byte, 2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read 16-bit length: %w", err)
		}
		payloadLen = uint64(binary.BigEndian.Uint16(buf))
	case payloadLen64Bit:
		buf := make([]byte, 8)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read 64-bit length: %w", err)
		}
		payloadLen = binary.BigEndian.Uint64(buf)
		// RFC 6455 Section 5.2: the most significant bit must be 0.
		if payloadLen&(1<<63) != 0 {
			return nil, ErrInvalidLength
		}
	}

	if isControlFrame(f.opcode) && payloadLen > maxControlPayload {
		return nil, ErrControlTooLarge
	}

	if maxPayload > 0 && payloadLen > uint64(maxPayload) {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooBig, payloadLen)
	}

	if f.masked {
		if _, err := io.ReadFull(r, f.mask[:]); err != nil {
			return nil, fmt.Errorf("read mask: %w", err)
		}
	}

	if payloadLen > 0 {
		f.payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, f.payload); err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		if f.masked {
			applyMask(f.payload, f.mask)
		}
	}

	return f, nil
}

// writeFrame serializes one frame to the buffered writer and flushes.
//
// The shortest length encoding is chosen: lengths up to 125 fit in the
// 7-bit field, up to 65535 use the 2-byte extension, anything larger the
// 8-byte extension (RFC 6455 Section 5.2).
func writeFrame(w *bufio.Writer, f *frame) error {
	if !isValidOpcode(f.opcode) {
		return fmt.Errorf("%w: 0x%X", ErrInvalidOpcode, f.opcode)
	}

	if isControlFrame(f.opcode) {
		if !f.fin {
			return ErrControlFragmented
		}
		if len(f.payload) > maxControlPayload {
			return ErrControlTooLarge
		}
	}

	if f.opcode == opcodeText && !utf8.Valid(f.payload) {
		return ErrInvalidUTF8
	}

	header := make([]byte, 2)
	if f.fin {
		header[0] |= 0x80
	}
	if f.rsv1 {
		header[0] |= 0x40
	}
	if f.rsv2 {
		header[0] |= 0x20
	}
	if f.rsv3 {
		header[0] |= 0x10
	}
	header[0] |= f.opcode & 0x0F

	if f.masked {
		header[1] |= 0x80
	}

	payloadLen := uint64(len(f.payload))

	switch {
	case payloadLen <= payloadLen7Bit:
		header[1] |= byte(payloadLen)
	case payloadLen <= 0xFFFF:
		header[1] |= payloadLen16Bit
	default:
		header[1] |= payloadLen64Bit
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	switch {
	case payloadLen > payloadLen7Bit && payloadLen <= 0xFFFF:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(payloadLen))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write 16-bit length: %w", err)
		}
	case payloadLen > 0xFFFF:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, payloadLen)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write 64-bit length: %w", err)
		}
	}

	if f.masked {
		if _, err := w.Write(f.mask[:]); err != nil {
			return fmt.Errorf("write mask: %w", err)
		}
	}

	if len(f.payload) > 0 {
		payload := f.payload
		if f.masked {
			// Copy so the caller's buffer is not clobbered.
			payload = make([]byte, len(f.payload))
			copy(payload, f.payload)
			applyMask(payload, f.mask)
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return nil
}

// writeRawFrame serializes a frame without any validation. Test-only:
// it lets the suite produce protocol violations (reserved opcodes,
// fragmented control frames, invalid UTF-8) that writeFrame refuses.
func writeRawFrame(w *bufio.Writer, f *frame) error {
	header := make([]byte, 2)
	if f.fin {
		header[0] |= 0x80
	}
	if f.rsv1 {
		header[0] |= 0x40
	}
	if f.rsv2 {
		header[0] |= 0x20
	}
	if f.rsv3 {
		header[0] |= 0x10
	}
	header[0] |= f.opcode & 0x0F

	if f.masked {
		header[1] |= 0x80
	}

	payloadLen := uint64(len(f.payload))
	switch {
	case payloadLen <= payloadLen7Bit:
		header[1] |= byte(payloadLen)
	case payloadLen <= 0xFFFF:
		header[1] |= payloadLen16Bit
	default:
		header[1] |= payloadLen64Bit
	}

	if _, err := w.Write(header); err != nil {
		return err
	}

	switch {
	case payloadLen > payloadLen7Bit && payloadLen <= 0xFFFF:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(payloadLen))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	case payloadLen > 0xFFFF:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, payloadLen)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}

	if f.masked {
		if _, err := w.Write(f.mask[:]); err != nil {
			return err
		}
	}

	if len(f.payload) > 0 {
		payload := f.payload
		if f.masked {
			payload = make([]byte, len(f.payload))
			copy(payload, f.payload)
			applyMask(payload, f.mask)
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	return w.Flush()
}

// applyMask XORs data in place with the 4-byte masking key.
//
// RFC 6455 Section 5.3:
//
//	transformed-octet-i = original-octet-i XOR masking-key-octet-(i MOD 4)
//
// XOR is an involution: applying the same key twice restores the input,
// so the one function both masks and unmasks.
func applyMask(data []byte, mask [4]byte) {
	for i := range data {
		data[i] ^= mask[i%4]
	}
}
