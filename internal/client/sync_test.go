package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/realtime"
)

// fakeSocket is an in-memory EventSource that lets tests emit events and
// inspect the registered listeners.
type fakeSocket struct {
	mu       sync.Mutex
	handlers map[string]map[*Handle]struct{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{handlers: make(map[string]map[*Handle]struct{})}
}

func (s *fakeSocket) Subscribe(event string, fn func(realtime.Payload)) *Handle {
	h := &Handle{event: event, fn: fn}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[event] == nil {
		s.handlers[event] = make(map[*Handle]struct{})
	}
	s.handlers[event][h] = struct{}{}
	return h
}

func (s *fakeSocket) Unsubscribe(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers[h.event], h)
}

func (s *fakeSocket) emit(event, conversationID string) {
	s.mu.Lock()
	var listeners []*Handle
	for h := range s.handlers[event] {
		listeners = append(listeners, h)
	}
	s.mu.Unlock()
	for _, h := range listeners {
		h.fn(realtime.Payload{ConversationID: conversationID})
	}
}

func (s *fakeSocket) listenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, set := range s.handlers {
		n += len(set)
	}
	return n
}

// pendingFetch blocks a GetConversation call until the test releases it.
type pendingFetch struct {
	release chan *models.ConversationView
}

// fakeFetcher hands each GetConversation call to the test for explicit
// release, so fetch completion order is fully controlled.
type fakeFetcher struct {
	started chan *pendingFetch
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{started: make(chan *pendingFetch, 8)}
}

func (f *fakeFetcher) GetConversation(ctx context.Context, conversationID string) (*models.ConversationView, error) {
	p := &pendingFetch{release: make(chan *models.ConversationView)}
	f.started <- p
	return <-p.release, nil
}

func (f *fakeFetcher) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return nil, nil
}

// awaitFetch fails the test if no fetch starts in time.
func (f *fakeFetcher) awaitFetch(t *testing.T) *pendingFetch {
	t.Helper()
	select {
	case p := <-f.started:
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a fetch to start")
		return nil
	}
}

// assertNoFetch fails the test if any fetch starts within the window.
func (f *fakeFetcher) assertNoFetch(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
		t.Fatal("unexpected fetch started")
	case <-time.After(50 * time.Millisecond):
	}
}

// viewRecorder collects OnConversation invocations.
type viewRecorder struct {
	mu    sync.Mutex
	views []*models.ConversationView
}

func (r *viewRecorder) record(v *models.ConversationView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) snapshot() []*models.ConversationView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.ConversationView(nil), r.views...)
}

func viewFor(conversationID string) *models.ConversationView {
	return &models.ConversationView{
		Conversation: models.Conversation{ID: conversationID},
	}
}

func TestSyncIgnoresOtherConversationsEvents(t *testing.T) {
	socket := newFakeSocket()
	fetcherA := newFakeFetcher()
	fetcherB := newFakeFetcher()

	syncA := NewConversationSync(fetcherA, socket, "conv-a")
	defer syncA.Close()
	syncB := NewConversationSync(fetcherB, socket, "conv-b")
	defer syncB.Close()

	socket.emit(realtime.EventNewMessage, "conv-a")

	p := fetcherA.awaitFetch(t)
	p.release <- viewFor("conv-a")
	fetcherB.assertNoFetch(t)
}

func TestSyncRefetchesOnEveryRelevantEvent(t *testing.T) {
	socket := newFakeSocket()
	fetcher := newFakeFetcher()
	rec := &viewRecorder{}

	cs := NewConversationSync(fetcher, socket, "conv-a")
	defer cs.Close()
	cs.OnConversation = rec.record

	events := []string{
		realtime.EventNewMessage,
		realtime.EventMessagesRead,
		realtime.EventOfferUpdated,
		realtime.EventOfferAccepted,
		realtime.EventOfferRejected,
		realtime.EventMeetupProposed,
		realtime.EventMeetupAccepted,
	}
	for _, event := range events {
		socket.emit(event, "conv-a")
		p := fetcher.awaitFetch(t)
		p.release <- viewFor("conv-a")
	}

	deadline := time.Now().Add(time.Second)
	for len(rec.snapshot()) < len(events) {
		if time.Now().After(deadline) {
			t.Fatalf("recorded %d views, want %d", len(rec.snapshot()), len(events))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// A fetch that was already in flight when the sync closed must not invoke
// any callback, and teardown must release every registered listener.
func TestSyncCloseGuardsLateResponses(t *testing.T) {
	socket := newFakeSocket()
	fetcher := newFakeFetcher()
	rec := &viewRecorder{}

	cs := NewConversationSync(fetcher, socket, "conv-a")
	cs.OnConversation = rec.record

	if got := socket.listenerCount(); got != len(syncEvents) {
		t.Fatalf("listener count = %d, want %d", got, len(syncEvents))
	}

	socket.emit(realtime.EventOfferAccepted, "conv-a")
	p := fetcher.awaitFetch(t)

	cs.Close()
	p.release <- viewFor("conv-a")

	// Give the refetch goroutine time to (incorrectly) deliver.
	time.Sleep(50 * time.Millisecond)
	if views := rec.snapshot(); len(views) != 0 {
		t.Errorf("callbacks after Close: %d", len(views))
	}
	if got := socket.listenerCount(); got != 0 {
		t.Errorf("listeners after Close = %d, want 0", got)
	}

	// Events after teardown never reach the fetcher.
	socket.emit(realtime.EventNewMessage, "conv-a")
	fetcher.assertNoFetch(t)
}

// When refetches race, the newest one wins regardless of completion order.
func TestSyncLastFetchWins(t *testing.T) {
	socket := newFakeSocket()
	fetcher := newFakeFetcher()
	rec := &viewRecorder{}

	cs := NewConversationSync(fetcher, socket, "conv-a")
	defer cs.Close()
	cs.OnConversation = rec.record

	socket.emit(realtime.EventOfferUpdated, "conv-a")
	first := fetcher.awaitFetch(t)
	socket.emit(realtime.EventOfferAccepted, "conv-a")
	second := fetcher.awaitFetch(t)

	// The newer fetch completes first; the stale one finishes late and
	// must be dropped.
	newer := viewFor("conv-a")
	second.release <- newer
	first.release <- viewFor("conv-a")

	deadline := time.Now().Add(time.Second)
	for len(rec.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no view delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	views := rec.snapshot()
	if len(views) != 1 {
		t.Fatalf("delivered %d views, want 1", len(views))
	}
	if views[0] != newer {
		t.Error("stale fetch result was delivered")
	}
}
