package websocket

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultHandshakeTimeout bounds the opening handshake when the config does
// not set one.
const DefaultHandshakeTimeout = 30 * time.Second

// Config carries the optional per-session settings. The zero value (or a nil
// pointer) means: system trust store, no extra headers, no extension, no
// rate limiting, standard logger.
type Config struct {
	// CertPath points to a PEM certificate trusted in addition to the
	// system trust store. Empty means the transport's default TLS behavior.
	CertPath string

	// Headers are applied to the upgrade request after the extension
	// header, so a user value for the same name wins.
	Headers map[string]string

	// EnableExtension offers permessage-deflate in the handshake. The offer
	// covers negotiation only: a peer may accept it, but the engine does not
	// compress outbound frames or inflate inbound ones.
	EnableExtension bool

	// HandshakeTimeout bounds connection establishment. Zero means
	// DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// RateLimit throttles inbound frame dispatch. Nil or disabled means no
	// throttling.
	RateLimit *RateLimitConfig

	// Logger receives engine diagnostics. Nil means logrus.StandardLogger.
	Logger logrus.FieldLogger
}

// RateLimitConfig defines token-bucket throttling for inbound frames.
type RateLimitConfig struct {
	// MessagesPerSecond defines how many inbound frames are dispatched per second
	MessagesPerSecond rate.Limit
	// Burst defines the maximum burst size (token bucket capacity)
	Burst int
	// Enabled determines if rate limiting is active
	Enabled bool
}

// DefaultRateLimitConfig returns the default rate limit configuration
// Allows 100 messages per second with burst of 200
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled: false,
	}
}

func (c *Config) withDefaults() *Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if out.Logger == nil {
		out.Logger = logrus.StandardLogger()
	}
	return &out
}
