package harmonyws

import "errors"

// Error kinds returned by session operations. Every failure of a public
// operation wraps exactly one of these sentinels together with a descriptive
// cause; match with errors.Is.
var (
	// ErrTLS covers certificate loading and TLS connector construction
	// failures during Connect.
	ErrTLS = errors.New("tls setup failed")

	// ErrHeader is returned when a configured handshake header has an
	// invalid name or value. The message names the offending key.
	ErrHeader = errors.New("invalid handshake header")

	// ErrConnect covers a malformed endpoint URL and upgrade failures.
	ErrConnect = errors.New("connection failed")

	// ErrSend is returned by SendText, SendBinary and Ping when the session
	// is not open, has terminated, or the frame write fails.
	ErrSend = errors.New("send failed")

	// ErrReceive wraps non-fatal read-path errors. It is never returned
	// from an operation; it is delivered through the error handler and the
	// read loop continues.
	ErrReceive = errors.New("receive failed")

	// ErrClose is the Close counterpart of ErrSend.
	ErrClose = errors.New("close failed")

	// ErrPayloadTooLarge is returned by Ping for payloads longer than
	// MaxControlPayload. It is distinct from ErrSend and is raised before
	// any queue interaction.
	ErrPayloadTooLarge = errors.New("control payload too large")
)
