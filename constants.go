package harmonyws

// Outbound queue and control-frame limits.
const (
	// SendQueueCapacity is the number of frames the outbound queue holds
	// before enqueueing callers block (backpressure, never drops).
	SendQueueCapacity = 32

	// MaxControlPayload is the maximum length accepted for explicitly
	// supplied ping and pong payloads, enforced at the send boundary.
	MaxControlPayload = 128
)

// Default control-frame payloads.
const (
	// DefaultPingPayload is used by Ping when no payload is given.
	DefaultPingPayload = "ping"

	// DefaultPongPayload is the auto-response body for inbound pings when no
	// ping handler is registered, or when the handler returns nothing or
	// fails.
	DefaultPongPayload = "pong"
)
