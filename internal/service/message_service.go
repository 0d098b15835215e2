package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/realtime"
	"github.com/palengke-ph/backend/internal/storage"
)

// MessageService owns chat messages within a conversation.
type MessageService struct {
	store  storage.Store
	events realtime.Publisher
}

// NewMessageService creates a new MessageService.
func NewMessageService(store storage.Store, events realtime.Publisher) *MessageService {
	return &MessageService{store: store, events: events}
}

// Send appends a message to the conversation. Text messages require
// content; image messages require an image URL.
func (s *MessageService) Send(ctx context.Context, userID, conversationID, content string, msgType models.MessageType, imageURL string) (*models.Message, error) {
	if msgType == "" {
		msgType = models.MessageText
	}
	if msgType == models.MessageText && content == "" {
		return nil, ErrEmptyMessage
	}
	if msgType == models.MessageImage && imageURL == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.Party(userID) {
		return nil, ErrNotParty
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
		MessageType:    msgType,
		ImageURL:       imageURL,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.events.Publish(realtime.EventNewMessage, conversationID, conv.BuyerID, conv.SellerID)
	slog.Debug("Message sent", "conversation_id", conversationID, "sender_id", userID, "type", msgType)
	return msg, nil
}

// List returns the conversation's messages, oldest first.
func (s *MessageService) List(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.Party(userID) {
		return nil, ErrNotParty
	}

	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// MarkRead marks the counterpart's messages as read and notifies them so
// read receipts update in real time. A no-op when nothing was unread.
func (s *MessageService) MarkRead(ctx context.Context, userID, conversationID string) error {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.Party(userID) {
		return ErrNotParty
	}

	n, err := s.store.MarkMessagesRead(ctx, conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	if n > 0 {
		s.events.Publish(realtime.EventMessagesRead, conversationID, conv.Counterpart(userID))
	}
	return nil
}
