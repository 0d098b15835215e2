package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/palengke-ph/backend/internal/realtime"
)

// Handle identifies one registered listener. Unsubscribe removes exactly
// the listener the handle was returned for, so two subscribers to the
// same event never interfere.
type Handle struct {
	event string
	fn    func(realtime.Payload)
}

// EventSource is the subscription surface ConversationSync consumes.
// Socket implements it against a live connection; tests substitute fakes.
type EventSource interface {
	Subscribe(event string, fn func(realtime.Payload)) *Handle
	Unsubscribe(h *Handle)
}

// Socket is the shared per-session event connection. One Socket serves
// every open conversation; listeners filter by conversation themselves.
type Socket struct {
	conn *websocket.Conn

	mu       sync.Mutex
	handlers map[string]map[*Handle]struct{}
	closed   bool
	done     chan struct{}
}

// DialSocket connects to the push endpoint and starts the read loop.
// origin is the HTTP origin of the server, required by the handshake.
func DialSocket(socketURL, origin string) (*Socket, error) {
	conn, err := websocket.Dial(socketURL, "", origin)
	if err != nil {
		return nil, fmt.Errorf("failed to connect socket: %w", err)
	}

	s := &Socket{
		conn:     conn,
		handlers: make(map[string]map[*Handle]struct{}),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Subscribe registers a listener for the named event and returns its
// handle.
func (s *Socket) Subscribe(event string, fn func(realtime.Payload)) *Handle {
	h := &Handle{event: event, fn: fn}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return h
	}
	set, ok := s.handlers[event]
	if !ok {
		set = make(map[*Handle]struct{})
		s.handlers[event] = set
	}
	set[h] = struct{}{}
	return h
}

// Unsubscribe removes the listener. Unsubscribing twice is a no-op.
func (s *Socket) Unsubscribe(h *Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.handlers[h.event]; ok {
		delete(set, h)
		if len(set) == 0 {
			delete(s.handlers, h.event)
		}
	}
}

// Close shuts the connection down and stops dispatching. Listeners
// registered at close time are dropped.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.handlers = make(map[string]map[*Handle]struct{})
	s.mu.Unlock()

	err := s.conn.Close()
	<-s.done
	return err
}

func (s *Socket) readLoop() {
	defer close(s.done)

	dec := json.NewDecoder(s.conn)
	for {
		var ev realtime.Event
		if err := dec.Decode(&ev); err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				slog.Warn("socket: read failed, connection lost", "error", err)
			}
			return
		}
		s.dispatch(ev)
	}
}

func (s *Socket) dispatch(ev realtime.Event) {
	s.mu.Lock()
	listeners := make([]*Handle, 0, len(s.handlers[ev.Name]))
	for h := range s.handlers[ev.Name] {
		listeners = append(listeners, h)
	}
	s.mu.Unlock()

	for _, h := range listeners {
		h.fn(ev.Payload)
	}
}
