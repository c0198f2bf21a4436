package websocket

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// TestReadFrame_TextUnmasked reads an unmasked text frame, the shape a
// client-role connection sees from a server.
func TestReadFrame_TextUnmasked(t *testing.T) {
	data := []byte{
		0x81, // FIN=1, RSV=0, opcode=0x1 (text)
		0x05, // MASK=0, length=5
		'H', 'e', 'l', 'l', 'o',
	}

	f, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}

	if !f.fin {
		t.Error("expected FIN=1")
	}
	if f.opcode != opcodeText {
		t.Errorf("expected opcode text(0x1), got 0x%X", f.opcode)
	}
	if f.masked {
		t.Error("expected unmasked frame")
	}
	if string(f.payload) != "Hello" {
		t.Errorf("expected payload 'Hello', got '%s'", f.payload)
	}
}

// TestReadFrame_TextMasked reads a masked client frame and checks the
// payload comes back unmasked.
func TestReadFrame_TextMasked(t *testing.T) {
	payload := []byte("Hello")
	mask := [4]byte{0x12, 0x34, 0x56, 0x78}

	masked := make([]byte, len(payload))
	copy(masked, payload)
	applyMask(masked, mask)

	data := []byte{
		0x81, // FIN=1, opcode=text
		0x85, // MASK=1, length=5
		mask[0], mask[1], mask[2], mask[3],
	}
	data = append(data, masked...)

	f, err := readFrame(bufio.NewReader(bytes.NewReader(data)), true, defaultMaxMessageSize)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}

	if !f.masked {
		t.Error("expected masked frame")
	}
	if f.mask != mask {
		t.Errorf("expected mask %v, got %v", mask, f.mask)
	}
	if string(f.payload) != "Hello" {
		t.Errorf("expected unmasked payload 'Hello', got '%s'", f.payload)
	}
}

// TestReadFrame_RequireMask rejects an unmasked frame when the reader is
// in server role. RFC 6455 Section 5.1.
func TestReadFrame_RequireMask(t *testing.T) {
	data := []byte{0x81, 0x02, 'h', 'i'}

	_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), true, defaultMaxMessageSize)
	if !errors.Is(err, ErrUnmaskedFrame) {
		t.Fatalf("expected ErrUnmaskedFrame, got %v", err)
	}
}

// TestReadFrame_ExtendedLength16 reads a frame using the 16-bit length
// encoding.
func TestReadFrame_ExtendedLength16(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, 300)

	data := []byte{0x82, 126} // binary, MASK=0, len7=126
	length := make([]byte, 2)
	binary.BigEndian.PutUint16(length, 300)
	data = append(data, length...)
	data = append(data, payload...)

	f, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if len(f.payload) != 300 {
		t.Errorf("expected 300 payload bytes, got %d", len(f.payload))
	}
}

// TestReadFrame_ExtendedLength64 reads a frame using the 64-bit length
// encoding.
func TestReadFrame_ExtendedLength64(t *testing.T) {
	payload := bytes.Repeat([]byte{'y'}, 70000)

	data := []byte{0x82, 127}
	length := make([]byte, 8)
	binary.BigEndian.PutUint64(length, 70000)
	data = append(data, length...)
	data = append(data, payload...)

	f, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if len(f.payload) != 70000 {
		t.Errorf("expected 70000 payload bytes, got %d", len(f.payload))
	}
}

// TestReadFrame_Length64MSB rejects an 8-byte length with the most
// significant bit set. RFC 6455 Section 5.2.
func TestReadFrame_Length64MSB(t *testing.T) {
	data := []byte{0x82, 127}
	length := make([]byte, 8)
	binary.BigEndian.PutUint64(length, 1<<63|16)
	data = append(data, length...)

	_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

// TestReadFrame_ReservedBits rejects frames with RSV bits set.
func TestReadFrame_ReservedBits(t *testing.T) {
	for _, rsv := range []byte{0x40, 0x20, 0x10} {
		data := []byte{0x81 | rsv, 0x00}
		_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
		if !errors.Is(err, ErrReservedBits) {
			t.Errorf("rsv 0x%X: expected ErrReservedBits, got %v", rsv, err)
		}
	}
}

// TestReadFrame_InvalidOpcode rejects reserved opcodes.
func TestReadFrame_InvalidOpcode(t *testing.T) {
	for _, opcode := range []byte{0x3, 0x7, 0xB, 0xF} {
		data := []byte{0x80 | opcode, 0x00}
		_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
		if !errors.Is(err, ErrInvalidOpcode) {
			t.Errorf("opcode 0x%X: expected ErrInvalidOpcode, got %v", opcode, err)
		}
	}
}

// TestReadFrame_FragmentedControl rejects a control frame with FIN=0.
// RFC 6455 Section 5.5.
func TestReadFrame_FragmentedControl(t *testing.T) {
	data := []byte{0x09, 0x00} // FIN=0, opcode=ping

	_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
	if !errors.Is(err, ErrControlFragmented) {
		t.Fatalf("expected ErrControlFragmented, got %v", err)
	}
}

// TestReadFrame_ControlTooLarge rejects a control frame with payload
// over 125 bytes. RFC 6455 Section 5.5.
func TestReadFrame_ControlTooLarge(t *testing.T) {
	data := []byte{0x89, 126, 0x00, 126} // ping, 16-bit length 126
	data = append(data, bytes.Repeat([]byte{0}, 126)...)

	_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, defaultMaxMessageSize)
	if !errors.Is(err, ErrControlTooLarge) {
		t.Fatalf("expected ErrControlTooLarge, got %v", err)
	}
}

// TestReadFrame_TooBig rejects a frame over the message limit before
// reading the payload.
func TestReadFrame_TooBig(t *testing.T) {
	data := []byte{0x82, 127}
	length := make([]byte, 8)
	binary.BigEndian.PutUint64(length, 1024)
	data = append(data, length...)

	_, err := readFrame(bufio.NewReader(bytes.NewReader(data)), false, 512)
	if !errors.Is(err, ErrMessageTooBig) {
		t.Fatalf("expected ErrMessageTooBig, got %v", err)
	}
}

// TestWriteFrame_LengthEncodings checks the shortest length encoding is
// chosen at each boundary.
func TestWriteFrame_LengthEncodings(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		wantLen7   byte
		wantExtra  int // extra length bytes after the 2-byte header
	}{
		{"empty", 0, 0, 0},
		{"max 7-bit", 125, 125, 0},
		{"min 16-bit", 126, 126, 2},
		{"max 16-bit", 65535, 126, 2},
		{"min 64-bit", 65536, 127, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := bufio.NewWriter(&buf)
			f := &frame{
				fin:     true,
				opcode:  opcodeBinary,
				payload: bytes.Repeat([]byte{0xAB}, tt.payloadLen),
			}
			if err := writeFrame(w, f); err != nil {
				t.Fatalf("writeFrame failed: %v", err)
			}

			raw := buf.Bytes()
			if got := raw[1] & 0x7F; got != tt.wantLen7 {
				t.Errorf("len7: expected %d, got %d", tt.wantLen7, got)
			}
			if want := 2 + tt.wantExtra + tt.payloadLen; len(raw) != want {
				t.Errorf("frame size: expected %d, got %d", want, len(raw))
			}
		})
	}
}

// TestFrame_RoundTrip serializes and reparses frames of every shape and
// expects the result to match the original.
func TestFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame *frame
	}{
		{"text", &frame{fin: true, opcode: opcodeText, payload: []byte("hello")}},
		{"text empty", &frame{fin: true, opcode: opcodeText}},
		{"binary", &frame{fin: true, opcode: opcodeBinary, payload: []byte{0, 255, 170, 85}}},
		{"fragment start", &frame{fin: false, opcode: opcodeText, payload: []byte("par")}},
		{"continuation", &frame{fin: true, opcode: opcodeContinuation, payload: []byte("tial")}},
		{"masked text", &frame{fin: true, opcode: opcodeText, masked: true,
			mask: [4]byte{0xDE, 0xAD, 0xBE, 0xEF}, payload: []byte("masked payload")}},
		{"masked 16-bit length", &frame{fin: true, opcode: opcodeBinary, masked: true,
			mask: [4]byte{1, 2, 3, 4}, payload: bytes.Repeat([]byte{0x5A}, 1000)}},
		{"64-bit length", &frame{fin: true, opcode: opcodeBinary,
			payload: bytes.Repeat([]byte{0x42}, 70000)}},
		{"ping", &frame{fin: true, opcode: opcodePing, payload: []byte("ka")}},
		{"pong", &frame{fin: true, opcode: opcodePong, payload: []byte("ka")}},
		{"close", &frame{fin: true, opcode: opcodeClose, payload: []byte{0x03, 0xE8}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := bufio.NewWriter(&buf)
			if err := writeFrame(w, tt.frame); err != nil {
				t.Fatalf("writeFrame failed: %v", err)
			}

			got, err := readFrame(bufio.NewReader(&buf), tt.frame.masked, defaultMaxMessageSize)
			if err != nil {
				t.Fatalf("readFrame failed: %v", err)
			}

			if got.fin != tt.frame.fin {
				t.Errorf("fin: expected %v, got %v", tt.frame.fin, got.fin)
			}
			if got.opcode != tt.frame.opcode {
				t.Errorf("opcode: expected 0x%X, got 0x%X", tt.frame.opcode, got.opcode)
			}
			if got.masked != tt.frame.masked {
				t.Errorf("masked: expected %v, got %v", tt.frame.masked, got.masked)
			}
			if !bytes.Equal(got.payload, tt.frame.payload) {
				t.Errorf("payload mismatch: expected %d bytes, got %d",
					len(tt.frame.payload), len(got.payload))
			}
		})
	}
}

// TestWriteFrame_RejectsInvalidUTF8 refuses to serialize a text frame
// with invalid UTF-8.
func TestWriteFrame_RejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	f := &frame{fin: true, opcode: opcodeText, payload: []byte{0xFF, 0xFE}}

	err := writeFrame(bufio.NewWriter(&buf), f)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

// TestWriteFrame_RejectsOversizedControl refuses a control frame with
// payload over 125 bytes.
func TestWriteFrame_RejectsOversizedControl(t *testing.T) {
	var buf bytes.Buffer
	f := &frame{fin: true, opcode: opcodePing,
		payload: []byte(strings.Repeat("x", 126))}

	err := writeFrame(bufio.NewWriter(&buf), f)
	if !errors.Is(err, ErrControlTooLarge) {
		t.Fatalf("expected ErrControlTooLarge, got %v", err)
	}
}

// TestApplyMask_Involution checks that masking twice with the same key
// restores the input. RFC 6455 Section 5.3.
func TestApplyMask_Involution(t *testing.T) {
	original := []byte("The quick brown fox jumps over the lazy dog")
	mask := [4]byte{0xA1, 0xB2, 0xC3, 0xD4}

	data := make([]byte, len(original))
	copy(data, original)

	applyMask(data, mask)
	if bytes.Equal(data, original) {
		t.Fatal("masking changed nothing")
	}

	applyMask(data, mask)
	if !bytes.Equal(data, original) {
		t.Fatal("double masking did not restore the original")
	}
}

// TestApplyMask_KeyCycling checks the key cycles with period 4.
func TestApplyMask_KeyCycling(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	mask := [4]byte{1, 2, 3, 4}

	applyMask(data, mask)

	want := []byte{1, 2, 3, 4, 1, 2, 3, 4}
	if !bytes.Equal(data, want) {
		t.Errorf("expected %v, got %v", want, data)
	}
}

// TestOpcodeClassification covers the opcode predicates.
func TestOpcodeClassification(t *testing.T) {
	for _, opcode := range []byte{opcodeClose, opcodePing, opcodePong} {
		if !isControlFrame(opcode) {
			t.Errorf("opcode 0x%X should be a control frame", opcode)
		}
		if isDataFrame(opcode) {
			t.Errorf("opcode 0x%X should not be a data frame", opcode)
		}
	}
	for _, opcode := range []byte{opcodeContinuation, opcodeText, opcodeBinary} {
		if isControlFrame(opcode) {
			t.Errorf("opcode 0x%X should not be a control frame", opcode)
		}
		if !isDataFrame(opcode) {
			t.Errorf("opcode 0x%X should be a data frame", opcode)
		}
	}
	if isValidOpcode(0x3) || isValidOpcode(0xB) {
		t.Error("reserved opcodes must not validate")
	}
}
