package bedrock

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"github.com/coregx/bedrock/websocket"
)

// defaultCommandTimeout bounds one command round-trip. A reply arriving
// later finds no waiter and is discarded.
const defaultCommandTimeout = 10 * time.Second

// Session is one connected game client: the websocket transport plus the
// per-client protocol state — the subscription set and the table of
// in-flight command requests.
//
// The session owns its transport exclusively. One goroutine pumps
// readLoop; handlers run as independent goroutines and reach the session
// only through the Context they were given. Sends from any number of
// handlers are safe: the transport serializes frame writes.
type Session struct {
	id       uuid.UUID
	conn     *websocket.Conn
	log      *slog.Logger
	registry *Registry

	commandTimeout time.Duration

	// ctx is the session lifetime: cancelled on Close, it releases
	// pending command waiters and stops dispatched handlers.
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	closed        bool
	subscriptions map[string]struct{}
	pending       map[string]chan *Message

	handlers sync.WaitGroup
}

func newSession(conn *websocket.Conn, registry *Registry, log *slog.Logger, commandTimeout time.Duration) *Session {
	if commandTimeout <= 0 {
		commandTimeout = defaultCommandTimeout
	}
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:             id,
		conn:           conn,
		log:            log.With("session_id", id.String()),
		registry:       registry,
		commandTimeout: commandTimeout,
		ctx:            ctx,
		cancel:         cancel,
		subscriptions:  make(map[string]struct{}),
		pending:        make(map[string]chan *Message),
	}
}

// ID returns the session's client id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// RunCommand executes one Minecraft command on the client and waits for
// its response.
//
// A fresh UUID correlates the exchange: the request carries it, the
// client echoes it, and the reply routes to exactly this call however
// many commands are in flight. The wait is bounded by the command
// timeout; on timeout the pending entry is removed and a late reply is
// discarded. A response with non-zero statusCode returns a *CommandError
// carrying the code, the message, and the original command line.
func (s *Session) RunCommand(ctx context.Context, commandLine string) (*CommandResponse, error) {
	requestID := uuid.NewString()

	waiter := make(chan *Message, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, trace.Wrap(ErrSessionClosed)
	}
	s.pending[requestID] = waiter
	s.mu.Unlock()
	defer s.removePending(requestID)

	payload, err := encodeCommandRequest(requestID, commandLine)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if err := s.conn.WriteText(string(payload)); err != nil {
		return nil, trace.ConnectionProblem(err, "sending command %q", commandLine)
	}

	timer := time.NewTimer(s.commandTimeout)
	defer timer.Stop()

	select {
	case reply := <-waiter:
		resp, err := commandResponseFrom(reply)
		if err != nil {
			return nil, trace.BadParameter("invalid command response body: %v", err)
		}
		if reply.Header.MessagePurpose == PurposeError || resp.Code != 0 {
			return nil, trace.Wrap(&CommandError{
				Code:    resp.Code,
				Message: resp.Message,
				Command: commandLine,
			})
		}
		return resp, nil

	case <-timer.C:
		return nil, trace.Wrap(&CommandTimeoutError{Command: commandLine})

	case <-s.ctx.Done():
		return nil, trace.Wrap(ErrSessionClosed)

	case <-ctx.Done():
		return nil, trace.Wrap(ctx.Err())
	}
}

// Subscribe asks the client to stream the named event. The subscription
// set updates optimistically on a successful send; subscribing to a name
// already in the set is a no-op.
func (s *Session) Subscribe(event string) error {
	return s.setSubscription(PurposeSubscribe, event)
}

// Unsubscribe stops the named event stream. Unsubscribing from a name not
// in the set is a no-op.
func (s *Session) Unsubscribe(event string) error {
	return s.setSubscription(PurposeUnsubscribe, event)
}

func (s *Session) setSubscription(purpose MessagePurpose, event string) error {
	subscribing := purpose == PurposeSubscribe

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return trace.Wrap(ErrSessionClosed)
	}
	_, have := s.subscriptions[event]
	if have == subscribing {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	payload, err := encodeSubscription(purpose, uuid.NewString(), event)
	if err != nil {
		return trace.Wrap(err)
	}
	if err := s.conn.WriteText(string(payload)); err != nil {
		// Set unchanged on a failed send.
		return trace.Wrap(&SubscriptionError{Event: event, Err: err})
	}

	s.mu.Lock()
	if !s.closed {
		if subscribing {
			s.subscriptions[event] = struct{}{}
		} else {
			delete(s.subscriptions, event)
		}
	}
	s.mu.Unlock()
	return nil
}

// Subscriptions returns a snapshot of the subscribed event names.
func (s *Session) Subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.subscriptions))
	for name := range s.subscriptions {
		names = append(names, name)
	}
	return names
}

// readLoop pumps the transport until it closes or fails, routing each
// message. It returns nil for an orderly close and the transport error
// otherwise.
func (s *Session) readLoop() error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err) {
				return nil
			}
			return trace.Wrap(err)
		}
		s.handleMessage(data)
	}
}

// handleMessage routes one inbound envelope by its purpose. Envelope
// errors and unknown purposes are logged and dropped; the session
// survives them all.
func (s *Session) handleMessage(data []byte) {
	msg, err := decodeMessage(data)
	if err != nil {
		s.log.Warn("dropping malformed message", "error", err)
		return
	}

	switch msg.Header.MessagePurpose {
	case PurposeCommandResponse, PurposeError:
		if !s.deliver(msg.Header.RequestID, msg) {
			// Late reply after a timeout, or a duplicate. Discard.
			s.log.Debug("discarding unmatched reply",
				"request_id", msg.Header.RequestID,
				"purpose", string(msg.Header.MessagePurpose))
		}

	case PurposeEvent:
		s.dispatchEvent(msg)

	default:
		s.log.Warn("ignoring message with unknown purpose",
			"purpose", string(msg.Header.MessagePurpose))
	}
}

// deliver hands a reply to the waiter installed for requestID. The waiter
// latches: it is removed on delivery, so duplicates find nothing.
func (s *Session) deliver(requestID string, msg *Message) bool {
	s.mu.Lock()
	waiter, ok := s.pending[requestID]
	if ok {
		delete(s.pending, requestID)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	waiter <- msg // buffered; never blocks
	return true
}

// dispatchEvent fans an event out to its registered handlers, each as an
// independent goroutine. One handler's failure or panic never affects its
// siblings or the session.
func (s *Session) dispatchEvent(msg *Message) {
	event, err := parseEvent(msg)
	if err != nil {
		s.log.Warn("dropping malformed event", "error", err)
		return
	}

	handlers := s.registry.Handlers(event.Name)
	if len(handlers) == 0 {
		s.log.Debug("no handler for event", "event", event.Name,
			"known", IsKnownEvent(event.Name))
		return
	}

	ctx := &Context{session: s, Event: event, Raw: msg}
	for _, handler := range handlers {
		s.handlers.Add(1)
		go func(h HandlerFunc) {
			defer s.handlers.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("event handler panicked",
						"event", event.Name,
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			if err := h(s.ctx, ctx); err != nil {
				s.log.Error("event handler failed",
					"event", event.Name, "error", err)
			}
		}(handler)
	}
}

// Close shuts the session down: pending command waiters are released with
// a session-closed error, dispatched handlers are cancelled, the
// subscription set and pending table are emptied, and the transport is
// closed with the given status code. Idempotent.
func (s *Session) Close(code websocket.CloseCode) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = make(map[string]chan *Message)
	s.subscriptions = make(map[string]struct{})
	s.mu.Unlock()

	// Releases every RunCommand select and every handler watching ctx.
	s.cancel()

	err := s.conn.Close(code, "")
	return trace.Wrap(err)
}

func (s *Session) removePending(requestID string) {
	s.mu.Lock()
	delete(s.pending, requestID)
	s.mu.Unlock()
}
