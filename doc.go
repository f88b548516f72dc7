// Package harmonyws provides a client-side WebSocket session engine with
// event-driven callbacks and a bounded outbound queue.
//
// The engine establishes a connection (optionally with a custom trusted
// certificate, extra handshake headers, and permessage-deflate negotiation),
// then runs a duplex message pump: inbound frames are classified and
// dispatched to registered handlers, while send, ping and close requests from
// any number of goroutines are serialized through one bounded queue onto the
// connection.
//
// # Architecture
//
// Each connected session is driven by two goroutines. The read loop consumes
// inbound frames strictly in arrival order and dispatches them: text and
// binary payloads go to the message handler, pings are answered with an
// automatic pong (whose payload a ping handler may override), pongs and
// non-fatal read errors go to their handlers. The write loop is the only
// owner of the connection's write side; it drains the outbound queue in FIFO
// order, so frames reach the wire exactly in the order they were enqueued,
// regardless of which goroutine enqueued them.
//
// A session ends when the inbound stream does: the peer sends a close frame
// or the connection drops. The close handler fires exactly once per session.
// Frames still buffered in the outbound queue at that point are abandoned,
// not drained; the engine logs how many were lost.
//
// # Quick Start
//
//	import (
//	    "github.com/harmony-contrib/harmony-websocket/ws"
//	)
//
//	client := ws.New("wss://example.com/socket", &ws.Config{
//	    CertPath:        "/etc/ssl/private/gateway.pem",
//	    Headers:         map[string]string{"X-Client": "harmony"},
//	    EnableExtension: true,
//	})
//
//	client.OnMessage(func(msg harmonyws.Message) {
//	    fmt.Println("received:", msg.Text())
//	})
//	client.OnClose(func() {
//	    fmt.Println("session ended")
//	})
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	client.SendText(ctx, "hello")
//
// # Backpressure
//
// The outbound queue holds SendQueueCapacity frames. When it is full, send
// operations block until space frees or the session terminates; frames are
// never reordered and never silently dropped.
//
// # Callbacks
//
// Handlers are optional and independently registered. Message, pong, close
// and error handlers are invoked on their own goroutines so a slow handler
// cannot stall the read loop. The ping handler is the one exception: the
// dispatcher waits for its result because it determines the pong payload.
//
// # Rate Limiting
//
// Inbound dispatch can be throttled with a token bucket:
//
//	cfg := &ws.Config{RateLimit: ws.DefaultRateLimitConfig()} // 100 msgs/s, burst 200
//
// Unlike a server, a throttled client never drops the peer; the read loop
// simply waits for the limiter before consuming the next frame. Rate
// limiting is disabled by default.
//
// # Errors
//
// Every failure wraps one of the sentinel kinds in this package (ErrConnect,
// ErrTLS, ErrHeader, ErrSend, ErrReceive, ErrClose, ErrPayloadTooLarge)
// together with its cause; match with errors.Is.
package harmonyws
