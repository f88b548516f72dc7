package ws

import (
	harmonyws "github.com/harmony-contrib/harmony-websocket"
	"github.com/harmony-contrib/harmony-websocket/internal/websocket"
)

type Config = websocket.Config
type RateLimitConfig = websocket.RateLimitConfig

// New creates a client-side WebSocket session for the given endpoint URL.
//
// The session is created disconnected; call Connect to establish it. The
// config is optional and may be nil, which means: default TLS behavior, no
// extra handshake headers, no extension negotiation, no inbound rate
// limiting, and the standard logger.
//
// Example:
//
//	client := ws.New("wss://example.com/socket", &ws.Config{
//	    CertPath:        "/etc/ssl/gateway.pem",
//	    Headers:         map[string]string{"Authorization": "Bearer ..."},
//	    EnableExtension: true,
//	})
//
//	client.OnMessage(func(msg harmonyws.Message) {
//	    log.Printf("received: %s", msg.Text())
//	})
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
func New(endpoint string, cfg *Config) harmonyws.WebSocket {
	return websocket.New(endpoint, cfg)
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return websocket.DefaultRateLimitConfig()
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return websocket.NoRateLimit()
}
