package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/gobwas/ws"
)

const maxMessageSize = 10 * 1024 * 1024 // 10MB max assembled message size

// ErrMessageTooBig is returned by Reader.Next when an inbound message exceeds
// maxMessageSize. The oversized payload is discarded so the stream stays in
// sync and the reader remains usable.
var ErrMessageTooBig = errors.New("message exceeds maximum size")

// FrameType classifies a complete inbound or outbound frame.
type FrameType byte

const (
	TypeText FrameType = iota + 1
	TypeBinary
	TypeClose
	TypePing
	TypePong
	// TypeUnknown covers reserved opcodes; the dispatcher ignores them.
	TypeUnknown
)

// Frame is one complete protocol message unit. Fragmented data messages are
// assembled into a single Frame before being handed out.
type Frame struct {
	Type    FrameType
	Payload []byte
}

func TextFrame(p []byte) Frame   { return Frame{Type: TypeText, Payload: p} }
func BinaryFrame(p []byte) Frame { return Frame{Type: TypeBinary, Payload: p} }
func PingFrame(p []byte) Frame   { return Frame{Type: TypePing, Payload: p} }
func PongFrame(p []byte) Frame   { return Frame{Type: TypePong, Payload: p} }

// CloseFrame returns a close frame with no status code or reason.
func CloseFrame() Frame { return Frame{Type: TypeClose} }

// Reader yields complete frames from a raw WebSocket byte stream. It
// assembles fragmented data messages, lets control frames pass through
// mid-assembly, and unmasks payloads when the peer masks them.
//
// Reader is not safe for concurrent use; the read loop is its only caller.
type Reader struct {
	src io.Reader

	// partial message being assembled; op is zero when idle because
	// ws.OpContinuation can never start a message
	op  ws.OpCode
	buf []byte
}

func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// Next reads frames until one complete message or control frame is
// available. I/O errors are returned as-is; ErrMessageTooBig is recoverable
// and Next may be called again after it.
func (r *Reader) Next() (Frame, error) {
	for {
		h, err := ws.ReadHeader(r.src)
		if err != nil {
			return Frame{}, err
		}

		if h.Length > maxMessageSize || h.Length+int64(len(r.buf)) > maxMessageSize {
			r.op, r.buf = 0, nil
			if _, err := io.CopyN(io.Discard, r.src, h.Length); err != nil {
				return Frame{}, err
			}
			return Frame{}, fmt.Errorf("%w: %d byte frame", ErrMessageTooBig, h.Length)
		}

		payload := make([]byte, h.Length)
		if _, err := io.ReadFull(r.src, payload); err != nil {
			return Frame{}, err
		}
		if h.Masked {
			ws.Cipher(payload, h.Mask, 0)
		}

		switch h.OpCode {
		case ws.OpPing:
			return Frame{Type: TypePing, Payload: payload}, nil
		case ws.OpPong:
			return Frame{Type: TypePong, Payload: payload}, nil
		case ws.OpClose:
			return Frame{Type: TypeClose, Payload: payload}, nil
		case ws.OpText, ws.OpBinary:
			r.op, r.buf = h.OpCode, payload
			if h.Fin {
				return r.assembled(), nil
			}
		case ws.OpContinuation:
			if r.op == 0 {
				// stray continuation, nothing to attach it to
				continue
			}
			r.buf = append(r.buf, payload...)
			if h.Fin {
				return r.assembled(), nil
			}
		default:
			return Frame{Type: TypeUnknown, Payload: payload}, nil
		}
	}
}

func (r *Reader) assembled() Frame {
	f := Frame{Payload: r.buf}
	if r.op == ws.OpText {
		f.Type = TypeText
	} else {
		f.Type = TypeBinary
	}
	r.op, r.buf = 0, nil
	return f
}

// WriteFrame writes f to w as one client-to-server frame. Client frames are
// masked as RFC 6455 requires.
func WriteFrame(w io.Writer, f Frame) error {
	var wf ws.Frame
	switch f.Type {
	case TypeText:
		wf = ws.NewTextFrame(f.Payload)
	case TypeBinary:
		wf = ws.NewBinaryFrame(f.Payload)
	case TypePing:
		wf = ws.NewPingFrame(f.Payload)
	case TypePong:
		wf = ws.NewPongFrame(f.Payload)
	case TypeClose:
		wf = ws.NewCloseFrame(f.Payload)
	default:
		return fmt.Errorf("unsupported frame type %d", f.Type)
	}
	return ws.WriteFrame(w, ws.MaskFrameInPlace(wf))
}
