package models

import "time"

// MessageType distinguishes chat content kinds.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	// MessageSystem marks server-generated notices such as "offer accepted".
	MessageSystem MessageType = "system"
)

// Message is a single chat message within a conversation.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	Content        string      `json:"content"`
	MessageType    MessageType `json:"messageType"`
	ImageURL       string      `json:"imageUrl,omitempty"`
	IsRead         bool        `json:"isRead"`
	ReadAt         *time.Time  `json:"readAt"`
	CreatedAt      time.Time   `json:"createdAt"`
}
