package websocket

import (
	"context"
	"sync"

	harmonyws "github.com/harmony-contrib/harmony-websocket"
)

// callbacks holds the registered event handlers. Slots are single-writer,
// multi-reader: registration takes the write lock, dispatch takes the read
// lock, and under a race the last writer wins. Registrations outlive sessions
// across reconnects.
type callbacks struct {
	mu sync.RWMutex

	onError   harmonyws.ErrorHandler
	onMessage harmonyws.MessageHandler
	onOpen    harmonyws.OpenHandler
	onClose   harmonyws.CloseHandler
	onPing    harmonyws.PingHandler
	onPong    harmonyws.PongHandler
}

func (cb *callbacks) setError(h harmonyws.ErrorHandler) {
	cb.mu.Lock()
	cb.onError = h
	cb.mu.Unlock()
}

func (cb *callbacks) setMessage(h harmonyws.MessageHandler) {
	cb.mu.Lock()
	cb.onMessage = h
	cb.mu.Unlock()
}

func (cb *callbacks) setOpen(h harmonyws.OpenHandler) {
	cb.mu.Lock()
	cb.onOpen = h
	cb.mu.Unlock()
}

func (cb *callbacks) setClose(h harmonyws.CloseHandler) {
	cb.mu.Lock()
	cb.onClose = h
	cb.mu.Unlock()
}

func (cb *callbacks) setPing(h harmonyws.PingHandler) {
	cb.mu.Lock()
	cb.onPing = h
	cb.mu.Unlock()
}

func (cb *callbacks) setPong(h harmonyws.PongHandler) {
	cb.mu.Lock()
	cb.onPong = h
	cb.mu.Unlock()
}

// notifyError delivers a read-path error, fire-and-forget.
func (cb *callbacks) notifyError(err error) {
	cb.mu.RLock()
	h := cb.onError
	cb.mu.RUnlock()
	if h != nil {
		go h(err)
	}
}

// notifyMessage delivers a data message, fire-and-forget, so a slow handler
// cannot stall the read loop.
func (cb *callbacks) notifyMessage(msg harmonyws.Message) {
	cb.mu.RLock()
	h := cb.onMessage
	cb.mu.RUnlock()
	if h != nil {
		go h(msg)
	}
}

// fireOpen runs the open handler synchronously; Connect guarantees it
// completes before any frame dispatch begins.
func (cb *callbacks) fireOpen() {
	cb.mu.RLock()
	h := cb.onOpen
	cb.mu.RUnlock()
	if h != nil {
		h()
	}
}

// notifyClose delivers the terminal notification, fire-and-forget. The
// session guarantees at most one invocation.
func (cb *callbacks) notifyClose() {
	cb.mu.RLock()
	h := cb.onClose
	cb.mu.RUnlock()
	if h != nil {
		go h()
	}
}

func (cb *callbacks) notifyPong(payload []byte) {
	cb.mu.RLock()
	h := cb.onPong
	cb.mu.RUnlock()
	if h != nil {
		go h(payload)
	}
}

// pingResult is the one awaited dispatch path: the handler's return value
// decides the pong payload. With no handler it reports (nil, nil).
func (cb *callbacks) pingResult(ctx context.Context, payload []byte) ([]byte, error) {
	cb.mu.RLock()
	h := cb.onPing
	cb.mu.RUnlock()
	if h == nil {
		return nil, nil
	}
	return h(ctx, payload)
}
