package e2e_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gorilla "github.com/gorilla/websocket"
)

var upgrader = gorilla.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// startServer runs handler for every upgraded connection and returns the
// server's ws:// URL
func startServer(t *testing.T, handler func(conn *gorilla.Conn)) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)

	return wsURL(srv.URL)
}

// startHeaderCapture records the upgrade request headers and rejects the
// handshake, so only the request side is exercised
func startHeaderCapture(t *testing.T, headers chan<- http.Header) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		http.Error(w, "handshake rejected", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	return wsURL(srv.URL)
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func echo(conn *gorilla.Conn) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.WriteMessage(mt, data); err != nil {
			return
		}
	}
}
