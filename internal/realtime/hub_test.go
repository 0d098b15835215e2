package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

// testAuthenticate accepts tokens of the form "token-<userID>".
func testAuthenticate(token string) (string, error) {
	userID, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return "", errors.New("bad token")
	}
	return userID, nil
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) (Event, error) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(timeout))
	var ev Event
	err := json.NewDecoder(conn).Decode(&ev)
	return ev, err
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler(testAuthenticate))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHubPublishReachesTargetUser(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	buyer := dialWS(t, srv, "token-buyer")
	seller := dialWS(t, srv, "token-seller")

	// Joining is asynchronous to Dial returning; wait for both sessions.
	waitForSessions(t, hub, 2)

	hub.Publish(EventOfferAccepted, "conv-1", "buyer", "seller")

	for name, conn := range map[string]*websocket.Conn{"buyer": buyer, "seller": seller} {
		ev, err := readEvent(t, conn, 2*time.Second)
		if err != nil {
			t.Fatalf("%s: read event: %v", name, err)
		}
		if ev.Name != EventOfferAccepted {
			t.Errorf("%s: event = %q, want %q", name, ev.Name, EventOfferAccepted)
		}
		if ev.Payload.ConversationID != "conv-1" {
			t.Errorf("%s: conversationId = %q, want conv-1", name, ev.Payload.ConversationID)
		}
	}
}

func TestHubPublishSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	bystander := dialWS(t, srv, "token-bystander")
	waitForSessions(t, hub, 1)

	hub.Publish(EventNewMessage, "conv-1", "buyer", "seller")

	if ev, err := readEvent(t, bystander, 200*time.Millisecond); err == nil {
		t.Errorf("bystander unexpectedly received event %q", ev.Name)
	}
}

func TestHubPublishWithoutSessionsIsNoop(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.Publish(EventMeetupProposed, "conv-1", "nobody")
}

func TestHandlerRejectsBadToken(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	resp, err := http.Get(srv.URL + "/ws?token=garbage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp, err = http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func waitForSessions(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		n := 0
		for _, set := range hub.sessions {
			n += len(set)
		}
		hub.mu.Unlock()
		if n >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sessions", want)
}
