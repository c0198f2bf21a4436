package websocket

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// sampleKey and sampleAccept are the handshake test vector from
// RFC 6455 Section 1.3.
const (
	sampleKey    = "dGhlIHNhbXBsZSBub25jZQ=="
	sampleAccept = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
)

func TestComputeAcceptKey(t *testing.T) {
	if got := computeAcceptKey(sampleKey); got != sampleAccept {
		t.Errorf("expected %q, got %q", sampleAccept, got)
	}
}

func TestValidSecKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"rfc sample", sampleKey, true},
		{"empty", "", false},
		{"not base64", "not base64!!!", false},
		{"wrong length", "c2hvcnQ=", false}, // decodes to 5 bytes
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validSecKey(tt.key); got != tt.want {
				t.Errorf("validSecKey(%q): expected %v, got %v", tt.key, tt.want, got)
			}
		})
	}
}

func TestHeaderContainsToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		want   bool
	}{
		{"Upgrade", "upgrade", true},
		{"upgrade", "upgrade", true},
		{"keep-alive, Upgrade", "upgrade", true},
		{"keep-alive,Upgrade", "upgrade", true},
		{"keep-alive", "upgrade", false},
		{"", "upgrade", false},
	}
	for _, tt := range tests {
		if got := headerContainsToken(tt.header, tt.token); got != tt.want {
			t.Errorf("headerContainsToken(%q, %q): expected %v, got %v",
				tt.header, tt.token, tt.want, got)
		}
	}
}

// upgradeRequest builds a well-formed handshake request that individual
// tests then break.
func upgradeRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Sec-WebSocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", sampleKey)
	return r
}

// TestUpgrade_Rejections covers each handshake requirement of RFC 6455
// Section 4.2.1.
func TestUpgrade_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*http.Request)
		want   error
	}{
		{"bad method", func(r *http.Request) {
			r.Method = http.MethodPost
		}, ErrBadHandshakeMethod},
		{"http/1.0", func(r *http.Request) {
			r.Proto, r.ProtoMajor, r.ProtoMinor = "HTTP/1.0", 1, 0
		}, ErrBadHTTPVersion},
		{"missing host", func(r *http.Request) {
			r.Host = ""
		}, ErrMissingHost},
		{"missing upgrade", func(r *http.Request) {
			r.Header.Del("Upgrade")
		}, ErrMissingUpgrade},
		{"wrong upgrade", func(r *http.Request) {
			r.Header.Set("Upgrade", "h2c")
		}, ErrMissingUpgrade},
		{"missing connection", func(r *http.Request) {
			r.Header.Del("Connection")
		}, ErrMissingConnection},
		{"wrong version", func(r *http.Request) {
			r.Header.Set("Sec-WebSocket-Version", "8")
		}, ErrUnsupportedVersion},
		{"missing key", func(r *http.Request) {
			r.Header.Del("Sec-WebSocket-Key")
		}, ErrInvalidSecKey},
		{"short key", func(r *http.Request) {
			r.Header.Set("Sec-WebSocket-Key", "c2hvcnQ=")
		}, ErrInvalidSecKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := upgradeRequest()
			tt.mutate(r)
			_, err := Upgrade(httptest.NewRecorder(), r, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpgrade_OriginDenied(t *testing.T) {
	r := upgradeRequest()
	r.Header.Set("Origin", "http://evil.example.com")

	opts := &UpgradeOptions{
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == "http://good.example.com"
		},
	}
	_, err := Upgrade(httptest.NewRecorder(), r, opts)
	if !errors.Is(err, ErrOriginDenied) {
		t.Errorf("expected ErrOriginDenied, got %v", err)
	}
}

// TestHandler_FailureResponses checks the HTTP status written for failed
// handshakes: 426 with the supported version for a version mismatch, 400
// for everything else.
func TestHandler_FailureResponses(t *testing.T) {
	handler := Handler(nil, func(*Conn) {
		t.Error("callback must not run on a failed handshake")
	})

	t.Run("version mismatch", func(t *testing.T) {
		r := upgradeRequest()
		r.Header.Set("Sec-WebSocket-Version", "8")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusUpgradeRequired {
			t.Errorf("expected 426, got %d", w.Code)
		}
		if got := w.Header().Get("Sec-WebSocket-Version"); got != "13" {
			t.Errorf("expected Sec-WebSocket-Version: 13, got %q", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		r := upgradeRequest()
		r.Header.Del("Sec-WebSocket-Key")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

// TestUpgrade_EndToEnd runs the full opening handshake against a real
// HTTP server, exchanges one message, and completes the closing
// handshake.
func TestUpgrade_EndToEnd(t *testing.T) {
	connDone := make(chan struct{})
	ts := httptest.NewServer(Handler(nil, func(conn *Conn) {
		defer close(connDone)
		for {
			text, err := conn.ReadText()
			if err != nil {
				return
			}
			if err := conn.WriteText(text); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	netConn, err := net.Dial("tcp", ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer netConn.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", sampleKey)
	if err := req.Write(netConn); err != nil {
		t.Fatalf("writing handshake: %v", err)
	}

	reader := bufio.NewReader(netConn)
	resp, err := http.ReadResponse(reader, req)
	if err != nil {
		t.Fatalf("reading handshake response: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Sec-WebSocket-Accept"); got != sampleAccept {
		t.Errorf("accept key: expected %q, got %q", sampleAccept, got)
	}
	if got := resp.Header.Get("Upgrade"); got != "websocket" {
		t.Errorf("upgrade header: expected \"websocket\", got %q", got)
	}
	if got := resp.Header.Get("Sec-WebSocket-Protocol"); got != "" {
		t.Errorf("no subprotocol was requested, server echoed %q", got)
	}

	// Exchange one message.
	writer := bufio.NewWriter(netConn)
	if err := writeFrame(writer, &frame{
		fin: true, opcode: opcodeText,
		masked: true, mask: testMask,
		payload: []byte("ping me back"),
	}); err != nil {
		t.Fatalf("writing frame: %v", err)
	}

	echo, err := readFrame(reader, false, defaultMaxMessageSize)
	if err != nil {
		t.Fatalf("reading echo: %v", err)
	}
	if string(echo.payload) != "ping me back" {
		t.Errorf("echo payload: got '%s'", echo.payload)
	}

	// Closing handshake from the client side.
	if err := writeFrame(writer, &frame{
		fin: true, opcode: opcodeClose,
		masked: true, mask: testMask,
		payload: closePayload(CloseNormalClosure, ""),
	}); err != nil {
		t.Fatalf("writing close: %v", err)
	}

	answer, err := readFrame(reader, false, defaultMaxMessageSize)
	if err != nil {
		t.Fatalf("reading close answer: %v", err)
	}
	if answer.opcode != opcodeClose {
		t.Fatalf("expected close frame, got opcode 0x%X", answer.opcode)
	}

	<-connDone
}
