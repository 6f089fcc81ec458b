package wschat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/hangman/internal/chatbot"
	"github.com/robalobadob/hangman/internal/telemetry"
	"github.com/robalobadob/hangman/internal/words"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", query, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out Outbound
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func waitConnected(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Connected() != n {
		if time.Now().After(deadline) {
			t.Fatalf("connected = %d, want %d", h.Connected(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newHub() *Hub {
	bot := chatbot.New(words.Static{"cat"}, words.NewRand(1, 1), chatbot.WithTracer(telemetry.NoopTracer()))
	return NewHub(bot, "")
}

func TestHubRoutesBotReplies(t *testing.T) {
	h := newHub()
	srv := httptest.NewServer(h)
	defer srv.Close()

	alice := dial(t, srv, "user=alice")
	bob := dial(t, srv, "user=bob")
	waitConnected(t, h, 2)

	// Plain chat is relayed to the channel.
	if err := bob.WriteJSON(Inbound{Text: "hi all"}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*websocket.Conn{alice, bob} {
		if m := read(t, c); m.From != "bob" || m.Text != "hi all" {
			t.Fatalf("relay = %+v", m)
		}
	}

	if err := alice.WriteJSON(Inbound{Text: "!hangman"}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*websocket.Conn{alice, bob} {
		m := read(t, c)
		if m.From != BotName || m.Channel != DefaultChannel || !strings.Contains(m.Text, "Hangman with alice") {
			t.Fatalf("board = %+v", m)
		}
	}

	// A private command is answered privately.
	if err := bob.WriteJSON(Inbound{Text: "!stats", Private: true}); err != nil {
		t.Fatal(err)
	}
	if m := read(t, bob); !m.Private || !strings.Contains(m.Text, "@bob has played 0 games") {
		t.Fatalf("stats = %+v", m)
	}
}

func TestHubRejectsBadUser(t *testing.T) {
	srv := httptest.NewServer(newHub())
	defer srv.Close()

	for _, q := range []string{"", "user=", "user=hangman", "user=a%20b"} {
		resp, err := http.Get(srv.URL + "?" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%q: status %d", q, resp.StatusCode)
		}
	}
}
