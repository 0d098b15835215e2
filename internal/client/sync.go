package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/realtime"
)

// Fetcher is the read surface ConversationSync refetches from. Client
// implements it; tests substitute fakes.
type Fetcher interface {
	GetConversation(ctx context.Context, conversationID string) (*models.ConversationView, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// syncEvents are the push events that invalidate conversation state.
var syncEvents = []string{
	realtime.EventNewMessage,
	realtime.EventMessagesRead,
	realtime.EventOfferUpdated,
	realtime.EventOfferAccepted,
	realtime.EventOfferRejected,
	realtime.EventMeetupProposed,
	realtime.EventMeetupAccepted,
}

// ConversationSync keeps one conversation's local state converged on the
// server's. Push events carry no data beyond the conversation ID: every
// relevant event triggers a refetch of the authoritative view, which makes
// duplicated, reordered or coalesced events harmless.
//
// Refetches race; the newest one wins. After Close no callback fires, even
// for refetches already in flight.
type ConversationSync struct {
	conversationID string
	fetcher        Fetcher
	socket         EventSource

	// OnConversation and OnMessages receive each refetch result. Both
	// are invoked from refetch goroutines and must not call Close.
	OnConversation func(*models.ConversationView)
	OnMessages     func([]models.Message)

	mu      sync.Mutex
	handles []*Handle
	closed  bool
	gen     uint64
}

// NewConversationSync registers listeners for the conversation on the
// shared socket. Call Start for the initial load, and Close to tear the
// listeners down.
func NewConversationSync(fetcher Fetcher, socket EventSource, conversationID string) *ConversationSync {
	s := &ConversationSync{
		conversationID: conversationID,
		fetcher:        fetcher,
		socket:         socket,
	}
	for _, event := range syncEvents {
		s.handles = append(s.handles, socket.Subscribe(event, s.onEvent))
	}
	return s
}

// Start performs the initial fetch synchronously.
func (s *ConversationSync) Start(ctx context.Context) {
	s.refetch(ctx)
}

// onEvent ignores events for other conversations and refetches for ours.
func (s *ConversationSync) onEvent(p realtime.Payload) {
	if p.ConversationID != s.conversationID {
		return
	}
	go s.refetch(context.Background())
}

// refetch pulls the authoritative state and delivers it unless a newer
// refetch finished first or the sync was closed meanwhile.
func (s *ConversationSync) refetch(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	view, viewErr := s.fetcher.GetConversation(ctx, s.conversationID)
	msgs, msgsErr := s.fetcher.ListMessages(ctx, s.conversationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// A newer fetch superseded this one, or the screen is gone.
		return
	}
	if viewErr != nil {
		slog.Warn("sync: conversation refetch failed", "conversation_id", s.conversationID, "error", viewErr)
	} else if s.OnConversation != nil {
		s.OnConversation(view)
	}
	if msgsErr != nil {
		slog.Warn("sync: messages refetch failed", "conversation_id", s.conversationID, "error", msgsErr)
	} else if s.OnMessages != nil {
		s.OnMessages(msgs)
	}
}

// Close removes exactly the listeners this sync registered and guarantees
// no callback fires afterwards.
func (s *ConversationSync) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for _, h := range handles {
		s.socket.Unsubscribe(h)
	}
}
