package e2e_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	harmonyws "github.com/harmony-contrib/harmony-websocket"
	"github.com/harmony-contrib/harmony-websocket/ws"
)

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()

	url := startServer(t, echo)

	client := ws.New(url, nil)
	msgs := make(chan harmonyws.Message, 1)
	client.OnMessage(func(msg harmonyws.Message) { msgs <- msg })

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}

	select {
	case msg := <-msgs:
		if msg.Type != harmonyws.TextMessage {
			t.Errorf("message tagged %v, want text", msg.Type)
		}
		if msg.Text() != "hello" {
			t.Errorf("payload = %q, want %q", msg.Text(), "hello")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestUpgradeRequestHeaders(t *testing.T) {
	t.Parallel()

	t.Run("extension and user headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		url := startHeaderCapture(t, headers)

		client := ws.New(url, &ws.Config{
			Headers:         map[string]string{"X-Test": "1"},
			EnableExtension: true,
		})
		if err := client.Connect(context.Background()); !errors.Is(err, harmonyws.ErrConnect) {
			t.Fatalf("Connect() error = %v, want ErrConnect from rejected handshake", err)
		}

		got := <-headers
		if v := got.Get("X-Test"); v != "1" {
			t.Errorf("X-Test = %q, want %q", v, "1")
		}
		want := "permessage-deflate;client_max_window_bits"
		if v := got.Get("Sec-WebSocket-Extensions"); strings.ReplaceAll(v, " ", "") != want {
			t.Errorf("Sec-WebSocket-Extensions = %q, want %q", v, want)
		}
	})

	t.Run("user header overrides extension", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		url := startHeaderCapture(t, headers)

		client := ws.New(url, &ws.Config{
			Headers: map[string]string{
				"X-Test":                   "1",
				"Sec-WebSocket-Extensions": "none",
			},
			EnableExtension: true,
		})
		if err := client.Connect(context.Background()); !errors.Is(err, harmonyws.ErrConnect) {
			t.Fatalf("Connect() error = %v, want ErrConnect from rejected handshake", err)
		}

		got := <-headers
		if v := got.Get("Sec-WebSocket-Extensions"); v != "none" {
			t.Errorf("Sec-WebSocket-Extensions = %q, want user value %q", v, "none")
		}
	})
}

func TestRemoteCloseEndsSession(t *testing.T) {
	t.Parallel()

	url := startServer(t, func(conn *gorilla.Conn) {
		msg := gorilla.FormatCloseMessage(gorilla.CloseGoingAway, "going away")
		_ = conn.WriteControl(gorilla.CloseMessage, msg, time.Now().Add(time.Second))
	})

	client := ws.New(url, nil)
	var closes atomic.Int32
	closed := make(chan struct{}, 1)
	client.OnClose(func() {
		closes.Add(1)
		closed <- struct{}{}
	})

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close handler did not fire")
	}
	time.Sleep(100 * time.Millisecond)

	if n := closes.Load(); n != 1 {
		t.Errorf("close handler fired %d times, want 1", n)
	}

	// the session is gone, sends must fail from now on
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := client.SendText(context.Background(), "late")
		if errors.Is(err, harmonyws.ErrSend) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("SendText() error = %v, want ErrSend", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMissingCertificate(t *testing.T) {
	t.Parallel()

	client := ws.New("wss://localhost:1", &ws.Config{
		CertPath: filepath.Join(t.TempDir(), "missing.pem"),
	})
	opened := make(chan struct{}, 1)
	client.OnOpen(func() { opened <- struct{}{} })

	err := client.Connect(context.Background())
	if !errors.Is(err, harmonyws.ErrTLS) {
		t.Fatalf("Connect() error = %v, want ErrTLS", err)
	}

	select {
	case <-opened:
		t.Error("open handler fired for failed connect")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOversizedPingFailsFast(t *testing.T) {
	t.Parallel()

	client := ws.New("ws://localhost:1", nil)

	start := time.Now()
	err := client.Ping(context.Background(), make([]byte, 129))
	if !errors.Is(err, harmonyws.ErrPayloadTooLarge) {
		t.Fatalf("Ping() error = %v, want ErrPayloadTooLarge", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Ping() took %v, validation must not block", elapsed)
	}
}

func TestPingPong(t *testing.T) {
	t.Parallel()

	pongs := make(chan string, 1)
	url := startServer(t, func(conn *gorilla.Conn) {
		conn.SetPongHandler(func(appData string) error {
			pongs <- appData
			return nil
		})
		if err := conn.WriteControl(gorilla.PingMessage, []byte("probe"), time.Now().Add(time.Second)); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	client := ws.New(url, nil)
	client.OnPing(func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	})

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	select {
	case got := <-pongs:
		if got != "probe" {
			t.Errorf("pong payload = %q, want %q", got, "probe")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no pong received")
	}
}

func TestConcurrentSenders(t *testing.T) {
	t.Parallel()

	const (
		senders   = 3
		perSender = 40
	)

	received := make(chan string, senders*perSender)
	url := startServer(t, func(conn *gorilla.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)
		}
	})

	client := ws.New(url, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	var g errgroup.Group
	for s := 0; s < senders; s++ {
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				if err := client.SendText(context.Background(), fmt.Sprintf("%d:%d", s, i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("send error = %v", err)
	}

	last := make([]int, senders)
	for i := range last {
		last[i] = -1
	}
	for n := 0; n < senders*perSender; n++ {
		select {
		case msg := <-received:
			var s, seq int
			if _, err := fmt.Sscanf(msg, "%d:%d", &s, &seq); err != nil {
				t.Fatalf("unexpected message %q", msg)
			}
			if seq <= last[s] {
				t.Fatalf("sender %d: message %d overtook %d", s, seq, last[s])
			}
			last[s] = seq
		case <-time.After(10 * time.Second):
			t.Fatalf("received %d of %d messages", n, senders*perSender)
		}
	}
}
