package websocket

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	harmonyws "github.com/harmony-contrib/harmony-websocket"
	"github.com/harmony-contrib/harmony-websocket/internal/protocol"
)

// Client implements the harmonyws.WebSocket interface.
type Client struct {
	url    string
	cfg    *Config
	logger logrus.FieldLogger

	callbacks callbacks

	// current session, swapped atomically on Connect. At most one live
	// writer exists per session; producers only ever touch the queue.
	session atomic.Pointer[session]
}

// session is the live split connection: the read loop owns the inbound
// stream, the write pump exclusively owns the outbound sink, and everyone
// else enqueues onto sendCh.
type session struct {
	id     string
	conn   net.Conn
	reader *protocol.Reader

	sendCh  chan outFrame
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// sawClose records that a close frame arrived; only the read loop
	// touches it
	sawClose bool

	term      sync.Once
	closeOnce sync.Once
}

// quietEnd reports whether a terminal read error is a normal stream end: a
// locally torn down connection, or an EOF after the peer's close frame.
// Anything else is a transport failure worth reporting.
func (s *session) quietEnd(err error) bool {
	if errors.Is(err, net.ErrClosed) || s.ctx.Err() != nil {
		return true
	}
	return s.sawClose && errors.Is(err, io.EOF)
}

// outFrame pairs a frame with an optional write-result channel. Frames
// enqueued by public operations carry one so a write failure fails that
// specific call; auto-pongs do not.
type outFrame struct {
	frame  protocol.Frame
	result chan error
}

// New creates a disconnected client for the given endpoint URL.
func New(endpoint string, cfg *Config) *Client {
	resolved := cfg.withDefaults()
	return &Client{
		url:    endpoint,
		cfg:    resolved,
		logger: resolved.Logger,
	}
}

// Connect establishes a fresh session: connector construction, handshake,
// open notification, then the two session pumps. Establishment errors are
// returned to the caller and fire no handlers. A session left over from a
// previous Connect is terminated when displaced; frames still queued against
// it are not migrated.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("%w: %v", harmonyws.ErrConnect, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: unsupported scheme %q", harmonyws.ErrConnect, u.Scheme)
	}

	tlsConf, err := buildTLSConfig(c.cfg.CertPath)
	if err != nil {
		return fmt.Errorf("%w: %v", harmonyws.ErrTLS, err)
	}
	header, err := buildHeader(c.cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", harmonyws.ErrHeader, err)
	}

	dialer := newDialer(c.cfg, tlsConf, header)
	conn, br, _, err := dialer.Dial(ctx, c.url)
	if err != nil {
		return fmt.Errorf("%w: %v", harmonyws.ErrConnect, err)
	}

	sess := c.newSession(conn, br)
	if old := c.session.Swap(sess); old != nil {
		c.terminate(old)
	}
	c.log(sess).Debug("session established")

	// open fires synchronously, before any frame dispatch
	c.callbacks.fireOpen()

	go c.readLoop(sess)
	go c.writePump(sess)
	return nil
}

func (c *Client) newSession(conn net.Conn, br *bufio.Reader) *session {
	// frames buffered by the dialer during the handshake must be consumed
	// before reading the conn directly
	src := io.Reader(conn)
	if br != nil {
		src = br
	}

	var limiter *rate.Limiter
	if rl := c.cfg.RateLimit; rl != nil && rl.Enabled {
		limiter = rate.NewLimiter(rl.MessagesPerSecond, rl.Burst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:      uuid.New().String(),
		conn:    conn,
		reader:  protocol.NewReader(src),
		sendCh:  make(chan outFrame, harmonyws.SendQueueCapacity),
		limiter: limiter,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// SendText enqueues a text frame and waits for its write result.
func (c *Client) SendText(ctx context.Context, text string) error {
	return c.submit(ctx, protocol.TextFrame([]byte(text)), harmonyws.ErrSend)
}

// SendBinary enqueues a binary frame and waits for its write result.
func (c *Client) SendBinary(ctx context.Context, data []byte) error {
	return c.submit(ctx, protocol.BinaryFrame(data), harmonyws.ErrSend)
}

// Ping enqueues a ping frame. A nil payload defaults to DefaultPingPayload;
// oversized payloads are rejected before any queue interaction.
func (c *Client) Ping(ctx context.Context, payload []byte) error {
	if len(payload) > harmonyws.MaxControlPayload {
		return fmt.Errorf("%w: %d bytes", harmonyws.ErrPayloadTooLarge, len(payload))
	}
	if payload == nil {
		payload = []byte(harmonyws.DefaultPingPayload)
	}
	return c.submit(ctx, protocol.PingFrame(payload), harmonyws.ErrSend)
}

// Close enqueues a close frame with no code or reason. It is best-effort and
// does not wait for the peer's acknowledgement.
func (c *Client) Close(ctx context.Context) error {
	return c.submit(ctx, protocol.CloseFrame(), harmonyws.ErrClose)
}

// submit enqueues one frame on the current session and waits for the write
// pump to report the outcome. kind is the sentinel the operation fails with.
func (c *Client) submit(ctx context.Context, frame protocol.Frame, kind error) error {
	sess := c.session.Load()
	if sess == nil {
		return fmt.Errorf("%w: not connected", kind)
	}

	out := outFrame{frame: frame, result: make(chan error, 1)}
	select {
	case sess.sendCh <- out:
	case <-sess.done:
		return fmt.Errorf("%w: session terminated", kind)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", kind, ctx.Err())
	}

	select {
	case err := <-out.result:
		if err != nil {
			return fmt.Errorf("%w: %v", kind, err)
		}
		return nil
	case <-sess.done:
		// the write may still have completed just before termination
		select {
		case err := <-out.result:
			if err != nil {
				return fmt.Errorf("%w: %v", kind, err)
			}
			return nil
		default:
			return fmt.Errorf("%w: session terminated", kind)
		}
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", kind, ctx.Err())
	}
}

// IsAlive reports whether the current session exists and has not terminated.
func (c *Client) IsAlive() bool {
	sess := c.session.Load()
	if sess == nil {
		return false
	}
	select {
	case <-sess.done:
		return false
	default:
		return true
	}
}

// SessionID returns the identifier of the current session, or empty before
// the first Connect.
func (c *Client) SessionID() string {
	if sess := c.session.Load(); sess != nil {
		return sess.id
	}
	return ""
}

// Event registration. Each call overwrites the slot's previous handler.

func (c *Client) OnError(h harmonyws.ErrorHandler)     { c.callbacks.setError(h) }
func (c *Client) OnMessage(h harmonyws.MessageHandler) { c.callbacks.setMessage(h) }
func (c *Client) OnOpen(h harmonyws.OpenHandler)       { c.callbacks.setOpen(h) }
func (c *Client) OnClose(h harmonyws.CloseHandler)     { c.callbacks.setClose(h) }
func (c *Client) OnPing(h harmonyws.PingHandler)       { c.callbacks.setPing(h) }
func (c *Client) OnPong(h harmonyws.PongHandler)       { c.callbacks.setPong(h) }

// readLoop consumes inbound frames strictly in arrival order and dispatches
// them. It ends when the stream does; recoverable read errors are reported
// through the error handler and the loop continues.
func (c *Client) readLoop(sess *session) {
	defer c.terminate(sess)

	for {
		if sess.limiter != nil {
			if err := sess.limiter.Wait(sess.ctx); err != nil {
				return
			}
		}

		frame, err := sess.reader.Next()
		if err != nil {
			if errors.Is(err, protocol.ErrMessageTooBig) {
				c.callbacks.notifyError(fmt.Errorf("%w: %v", harmonyws.ErrReceive, err))
				continue
			}
			// a stream that ends without a close frame or local teardown
			// failed; the error handler hears about it before the close
			if !sess.quietEnd(err) {
				c.callbacks.notifyError(fmt.Errorf("%w: %v", harmonyws.ErrReceive, err))
			}
			c.fireClose(sess)
			return
		}

		c.dispatch(sess, frame)
	}
}

// dispatch applies the frame table. Only the ping round-trip is awaited;
// every other handler runs on its own goroutine.
func (c *Client) dispatch(sess *session, frame protocol.Frame) {
	switch frame.Type {
	case protocol.TypeText:
		c.callbacks.notifyMessage(harmonyws.Message{Type: harmonyws.TextMessage, Data: frame.Payload})
	case protocol.TypeBinary:
		c.callbacks.notifyMessage(harmonyws.Message{Type: harmonyws.BinaryMessage, Data: frame.Payload})
	case protocol.TypeClose:
		// close code and reason are a protocol detail, not forwarded
		sess.sawClose = true
		c.fireClose(sess)
	case protocol.TypePing:
		c.handlePing(sess, frame.Payload)
	case protocol.TypePong:
		c.callbacks.notifyPong(frame.Payload)
	default:
		// reserved frames are ignored
	}
}

// handlePing resolves the pong payload and enqueues the auto-response. The
// response is fire-and-forget: a write failure is logged by the pump, never
// surfaced to handlers.
func (c *Client) handlePing(sess *session, payload []byte) {
	pong := c.pongPayload(sess, payload)
	select {
	case sess.sendCh <- outFrame{frame: protocol.PongFrame(pong)}:
	case <-sess.ctx.Done():
	}
}

// pongPayload awaits the ping handler and validates its result. Handler
// errors and oversized payloads degrade to the default payload.
func (c *Client) pongPayload(sess *session, payload []byte) []byte {
	body, err := c.callbacks.pingResult(sess.ctx, payload)
	switch {
	case err != nil:
		c.log(sess).WithError(err).Warn("ping handler failed, sending default pong")
	case body == nil:
		// no handler, or the handler chose the default
	case len(body) > harmonyws.MaxControlPayload:
		c.log(sess).WithField("length", len(body)).Warn("pong payload too large, sending default pong")
	default:
		return body
	}
	return []byte(harmonyws.DefaultPongPayload)
}

// writePump is the sole owner of the connection's write side. It drains the
// queue in FIFO order and reports each write's outcome to the operation that
// enqueued it. A failed write does not stop the pump; later frames fail on
// their own.
func (c *Client) writePump(sess *session) {
	defer c.terminate(sess)

	for {
		select {
		case out := <-sess.sendCh:
			err := protocol.WriteFrame(sess.conn, out.frame)
			if out.result != nil {
				out.result <- err
			} else if err != nil {
				c.log(sess).WithError(err).Warn("dropped auto-response frame")
			}
		case <-sess.ctx.Done():
			return
		}
	}
}

// terminate resolves the termination race: whichever pump finishes first
// runs it, the loser unblocks on the cancelled context or closed conn and is
// abandoned. Frames still queued are lost; the count is logged.
func (c *Client) terminate(sess *session) {
	sess.term.Do(func() {
		sess.cancel()
		_ = sess.conn.Close()
		if n := len(sess.sendCh); n > 0 {
			c.log(sess).WithField("frames", n).Warn("abandoning queued outbound frames")
		}
		close(sess.done)
		c.log(sess).Debug("session terminated")
	})
}

// fireClose delivers the close notification at most once per session.
func (c *Client) fireClose(sess *session) {
	sess.closeOnce.Do(func() {
		c.callbacks.notifyClose()
	})
}

func (c *Client) log(sess *session) logrus.FieldLogger {
	return c.logger.WithField("session_id", sess.id)
}
