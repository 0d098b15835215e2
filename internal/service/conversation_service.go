package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

// ConversationService assembles the composite view the chat screen renders
// from: conversation, product, opposite user, latest offer, and active
// transaction.
type ConversationService struct {
	store storage.Store
}

// NewConversationService creates a new ConversationService.
func NewConversationService(store storage.Store) *ConversationService {
	return &ConversationService{store: store}
}

// StartConversation opens (or returns) the buyer's thread on a product.
func (s *ConversationService) StartConversation(ctx context.Context, buyerID, productID string) (*models.Conversation, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.SellerID == buyerID {
		return nil, ErrOwnListing
	}

	// Reuse an existing thread for the same buyer/product pair.
	existing, err := s.store.ListConversationsByUser(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	for i := range existing {
		if existing[i].ProductID == productID && existing[i].BuyerID == buyerID {
			return &existing[i], nil
		}
	}

	conv := &models.Conversation{
		ProductID: productID,
		BuyerID:   buyerID,
		SellerID:  product.SellerID,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	slog.Info("Conversation started", "conversation_id", conv.ID, "product_id", productID)
	return conv, nil
}

// GetConversation returns the composite view for a conversation the user
// participates in. Offer and Transaction are nil when absent; that is a
// normal state, not an error.
func (s *ConversationService) GetConversation(ctx context.Context, userID, conversationID string) (*models.ConversationView, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.Party(userID) {
		return nil, ErrNotParty
	}

	product, err := s.store.GetProduct(ctx, conv.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	opposite, err := s.store.GetUserByID(ctx, conv.Counterpart(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load opposite user: %w", err)
	}

	view := &models.ConversationView{
		Conversation: *conv,
		Product:      *product,
		OppositeUser: opposite.Public(),
	}

	offer, err := s.store.LatestOfferByConversation(ctx, conversationID)
	switch {
	case err == nil:
		view.Offer = offer
	case errors.Is(err, storage.ErrNotFound):
		// No offer yet.
	default:
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	tx, err := s.store.ActiveTransactionByConversation(ctx, conversationID)
	switch {
	case err == nil:
		view.Transaction = tx
	case errors.Is(err, storage.ErrNotFound):
		// No active transaction.
	default:
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	return view, nil
}

// ListConversations returns the user's conversations, newest first.
func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	convs, err := s.store.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}
