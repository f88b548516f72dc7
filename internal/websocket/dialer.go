package websocket

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"golang.org/x/net/http/httpguts"
)

const extensionHeader = "Sec-WebSocket-Extensions"

// extensionOption is the offered permessage-deflate extension. Offering it
// through the dialer keeps the handshake valid when the peer accepts; the
// engine negotiates only, compressed frames are not processed.
var extensionOption = httphead.NewOption("permessage-deflate", map[string]string{
	"client_max_window_bits": "",
})

// buildTLSConfig loads the certificate at certPath and returns a TLS config
// trusting it in addition to the system trust store. An empty path returns a
// nil config, leaving the transport's default TLS behavior in place.
func buildTLSConfig(certPath string) (*tls.Config, error) {
	if certPath == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("read certificate %s: %v", certPath, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		// system store unavailable, trust only the configured certificate
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pemData) {
		return nil, fmt.Errorf("certificate %s is not valid PEM", certPath)
	}

	return &tls.Config{RootCAs: pool}, nil
}

// buildHeader validates and composes the user-supplied upgrade request
// headers. The extension offer is not part of them; newDialer carries it
// unless the user claims the header for themselves.
func buildHeader(cfg *Config) (http.Header, error) {
	header := http.Header{}
	for name, value := range cfg.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("invalid value for header %q", name)
		}
		header.Set(name, value)
	}
	return header, nil
}

// newDialer builds the one-shot connector used for a single establishment.
// The extension is offered through the dialer so an accepting peer's response
// passes handshake validation; a user-supplied extension header takes its
// place verbatim and is then the user's contract with the peer.
func newDialer(cfg *Config, tlsConf *tls.Config, header http.Header) ws.Dialer {
	d := ws.Dialer{
		Timeout:   cfg.HandshakeTimeout,
		TLSConfig: tlsConf,
		Header:    ws.HandshakeHeaderHTTP(header),
	}
	if cfg.EnableExtension && header.Get(extensionHeader) == "" {
		d.Extensions = []httphead.Option{extensionOption}
	}
	return d
}
