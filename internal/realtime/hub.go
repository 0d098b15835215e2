// Package realtime pushes negotiation events to connected clients over a
// single per-user WebSocket connection.
//
// The hub owns one channel per signed-in user. A client connects once per
// session and is joined to its user channel after authentication;
// per-conversation filtering happens client side. Events are fire-and-forget
// refresh hints, never state deltas.
package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/websocket"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palengke_realtime_events_published_total",
		Help: "Push events published, by event name.",
	}, []string{"event"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "palengke_realtime_sessions_active",
		Help: "Currently connected websocket sessions.",
	})
)

// Authenticator resolves a bearer token to a user ID.
type Authenticator func(token string) (userID string, err error)

// Hub fans events out to each user's live connections.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*session]struct{}
}

// Ensure Hub implements Publisher
var _ Publisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*session]struct{})}
}

// session is one websocket connection. Writes are serialized through the
// encoder mutex; the read side only watches for close.
type session struct {
	userID  string
	mu      sync.Mutex
	encoder *json.Encoder
}

func (s *session) send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Encode(ev)
}

// Publish delivers the named event to every listed user's connections.
func (h *Hub) Publish(event, conversationID string, userIDs ...string) {
	ev := Event{Name: event, Payload: Payload{ConversationID: conversationID}}

	h.mu.Lock()
	var targets []*session
	for _, userID := range userIDs {
		for sess := range h.sessions[userID] {
			targets = append(targets, sess)
		}
	}
	h.mu.Unlock()

	eventsPublished.WithLabelValues(event).Inc()
	for _, sess := range targets {
		if err := sess.send(ev); err != nil {
			slog.Debug("realtime: dropping event for dead session",
				"event", event,
				"user_id", sess.userID,
				"error", err,
			)
		}
	}
}

func (h *Hub) join(sess *session) {
	h.mu.Lock()
	if h.sessions[sess.userID] == nil {
		h.sessions[sess.userID] = make(map[*session]struct{})
	}
	h.sessions[sess.userID][sess] = struct{}{}
	h.mu.Unlock()
	activeSessions.Inc()
}

func (h *Hub) leave(sess *session) {
	h.mu.Lock()
	if set := h.sessions[sess.userID]; set != nil {
		delete(set, sess)
		if len(set) == 0 {
			delete(h.sessions, sess.userID)
		}
	}
	h.mu.Unlock()
	activeSessions.Dec()
}

// Handler returns the /ws endpoint. The client authenticates with a bearer
// token passed as the "token" query parameter (websocket clients cannot set
// headers portably); on success the connection is joined to the user's
// channel until it closes.
func (h *Hub) Handler(authenticate Authenticator) http.Handler {
	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		h.serveConn(conn)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		userID, err := authenticate(token)
		if err != nil || userID == "" {
			slog.Warn("realtime: websocket auth failed", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		r = r.WithContext(withUserID(r.Context(), userID))
		wsHandler.ServeHTTP(w, r)
	})
}

func (h *Hub) serveConn(conn *websocket.Conn) {
	defer conn.Close()

	userID := userIDFromConn(conn)
	if userID == "" {
		return
	}

	sess := &session{userID: userID, encoder: json.NewEncoder(conn)}
	h.join(sess)
	defer h.leave(sess)
	slog.Debug("realtime: session joined", "user_id", userID)

	// Clients do not send application frames; mutations go over HTTP.
	// Drain the connection so we notice the close.
	io.Copy(io.Discard, conn)
	slog.Debug("realtime: session closed", "user_id", userID)
}
