package realtime

// Named push events. Every payload carries at minimum the conversation ID;
// consumers treat events as refresh hints and refetch authoritative state,
// so delivery order and duplicates do not matter.
const (
	EventNewMessage     = "new_message"
	EventMessagesRead   = "messages_read"
	EventOfferUpdated   = "offer_updated"
	EventOfferAccepted  = "offer_accepted"
	EventOfferRejected  = "offer_rejected"
	EventMeetupProposed = "meetup_proposed"
	EventMeetupAccepted = "meetup_accepted"
)

// Event is the wire frame pushed to connected clients.
type Event struct {
	Name    string  `json:"event"`
	Payload Payload `json:"payload"`
}

// Payload is the event body.
type Payload struct {
	ConversationID string `json:"conversationId"`
}

// Publisher is the interface the service layer emits events through.
type Publisher interface {
	// Publish delivers the named event to every listed user's channel.
	// Delivery is best effort; users without a live connection are
	// skipped.
	Publish(event, conversationID string, userIDs ...string)
}

// NopPublisher discards all events. Useful in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(event, conversationID string, userIDs ...string) {}
