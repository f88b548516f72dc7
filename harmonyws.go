package harmonyws

import "context"

// MessageType tags the payload of an inbound data message.
type MessageType int

const (
	// TextMessage denotes a UTF-8 text payload.
	TextMessage MessageType = iota + 1
	// BinaryMessage denotes an opaque binary payload.
	BinaryMessage
)

// Message is one complete data message received from the peer.
//
// Fragmented wire messages are reassembled before delivery, so Data always
// holds the full payload. The slice is owned by the receiver; handlers may
// retain or modify it freely.
type Message struct {
	Type MessageType
	Data []byte
}

// Text returns the payload as a string. It is a convenience for handlers of
// TextMessage payloads and does not validate the message type.
func (m Message) Text() string {
	return string(m.Data)
}

// Handler types for session events. A nil (unregistered) handler means the
// corresponding event is dropped; it is never queued or buffered.
type (
	// ErrorHandler receives read-path errors: recoverable ones (the read
	// loop keeps running) and, before the close handler, the transport
	// failure that ends a session without a close frame.
	ErrorHandler func(err error)

	// MessageHandler receives inbound text and binary messages.
	MessageHandler func(msg Message)

	// OpenHandler is invoked once per successful Connect, before any inbound
	// frame is dispatched.
	OpenHandler func()

	// CloseHandler is invoked exactly once per session, when the peer sends a
	// close frame or the inbound stream ends.
	CloseHandler func()

	// PingHandler is invoked for every inbound ping frame and may return a
	// replacement pong payload. Returning nil (or an error) selects the
	// default payload. Unlike the other handlers, the dispatcher waits for
	// its result before reading the next frame.
	PingHandler func(ctx context.Context, payload []byte) ([]byte, error)

	// PongHandler receives the payload of inbound pong frames.
	PongHandler func(payload []byte)
)

// WebSocket is a client-side WebSocket session.
//
// A session is created with ws.New, connected with Connect, and driven by two
// internal pumps: a read loop that dispatches inbound frames to registered
// handlers, and a write loop that drains a bounded outbound queue onto the
// connection. All operations are safe for concurrent use.
//
// Example usage:
//
//	client := ws.New("wss://example.com/socket", &ws.Config{
//	    Headers: map[string]string{"Authorization": "Bearer ..."},
//	})
//
//	client.OnMessage(func(msg harmonyws.Message) {
//	    log.Printf("received: %s", msg.Text())
//	})
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	client.SendText(ctx, "hello")
type WebSocket interface {
	// Connect establishes the connection: it builds the TLS material and the
	// upgrade request from the configuration, performs the handshake, fires
	// the open handler, and starts the session pumps.
	//
	// Establishment failures are returned to the caller and fire no handler:
	// ErrConnect for a malformed URL or a failed upgrade, ErrTLS for
	// certificate problems, ErrHeader for an invalid custom header.
	//
	// Connect may be called again at any time. It creates a fresh session
	// and terminates the one it displaces; frames still queued against the
	// previous session are discarded, while handler registrations carry
	// over.
	Connect(ctx context.Context) error

	// SendText enqueues a text frame for delivery. It blocks while the
	// outbound queue is full and returns once the frame has been written to
	// the connection. Fails with ErrSend when the session is not open or the
	// write fails.
	SendText(ctx context.Context, text string) error

	// SendBinary enqueues a binary frame for delivery. Semantics match
	// SendText.
	SendBinary(ctx context.Context, data []byte) error

	// Ping enqueues a ping frame. A nil payload defaults to
	// DefaultPingPayload. Payloads longer than MaxControlPayload fail with
	// ErrPayloadTooLarge before the queue is touched, so an oversized ping
	// never blocks.
	Ping(ctx context.Context, payload []byte) error

	// Close enqueues a close frame. It is best-effort: it returns once the
	// frame has been written and does not wait for the peer's close
	// acknowledgement. Fails with ErrClose.
	Close(ctx context.Context) error

	// IsAlive reports whether the current session is connected and has not
	// terminated.
	IsAlive() bool

	// SessionID returns the unique identifier of the current session, or an
	// empty string before the first Connect.
	SessionID() string

	// Event registration. Each slot holds at most one handler;
	// re-registration overwrites. Registering while a dispatch is in flight
	// is allowed and the last writer wins.
	OnError(h ErrorHandler)
	OnMessage(h MessageHandler)
	OnOpen(h OpenHandler)
	OnClose(h CloseHandler)
	OnPing(h PingHandler)
	OnPong(h PongHandler)
}
