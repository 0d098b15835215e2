package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/realtime"
	"github.com/palengke-ph/backend/internal/storage"
)

// OfferService owns the offer lifecycle: create, update, accept, reject.
// Accepting an offer also creates the conversation's active transaction.
type OfferService struct {
	store  storage.Store
	events realtime.Publisher
}

// NewOfferService creates a new OfferService.
func NewOfferService(store storage.Store, events realtime.Publisher) *OfferService {
	return &OfferService{store: store, events: events}
}

// CreateOffer records a buyer's offer on the conversation's product.
// Only one pending offer may exist per conversation at a time.
func (s *OfferService) CreateOffer(ctx context.Context, userID, conversationID string, amount decimal.Decimal) (*models.Offer, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.Party(userID) {
		return nil, ErrNotParty
	}
	if userID == conv.SellerID {
		return nil, ErrOwnListing
	}

	latest, err := s.store.LatestOfferByConversation(ctx, conversationID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing offers: %w", err)
	}
	if latest != nil && !latest.Status.Terminal() {
		return nil, ErrOfferAlreadyPending
	}

	offer := &models.Offer{
		ConversationID: conversationID,
		Amount:         amount,
		Status:         models.OfferPending,
		BuyerID:        conv.BuyerID,
		SellerID:       conv.SellerID,
	}
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.appendSystemMessage(ctx, conv.ID, userID, fmt.Sprintf("Offered %s", amount.StringFixed(2)))
	s.events.Publish(realtime.EventOfferUpdated, conv.ID, conv.BuyerID, conv.SellerID)
	slog.Info("Offer created", "offer_id", offer.ID, "conversation_id", conv.ID, "amount", amount)
	return offer, nil
}

// UpdateOffer changes the amount of a pending offer. Buyer only.
func (s *OfferService) UpdateOffer(ctx context.Context, userID, offerID string, amount decimal.Decimal) (*models.Offer, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}

	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	if userID != offer.BuyerID {
		return nil, ErrNotBuyer
	}
	if offer.Status != models.OfferPending {
		return nil, ErrOfferNotPending
	}

	offer.Amount = amount
	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	s.appendSystemMessage(ctx, offer.ConversationID, userID, fmt.Sprintf("Updated offer to %s", amount.StringFixed(2)))
	s.events.Publish(realtime.EventOfferUpdated, offer.ConversationID, offer.BuyerID, offer.SellerID)
	slog.Info("Offer updated", "offer_id", offer.ID, "amount", amount)
	return offer, nil
}

// AcceptOffer transitions a pending offer to accepted and creates the
// conversation's active transaction with the agreed price. Seller only.
func (s *OfferService) AcceptOffer(ctx context.Context, userID, offerID string) (*models.Offer, *models.Transaction, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load offer: %w", err)
	}
	if userID != offer.SellerID {
		return nil, nil, ErrNotSeller
	}
	if offer.Status != models.OfferPending {
		return nil, nil, ErrOfferNotPending
	}

	offer.Status = models.OfferAccepted
	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return nil, nil, fmt.Errorf("failed to accept offer: %w", err)
	}

	tx := &models.Transaction{
		ConversationID: offer.ConversationID,
		OfferID:        offer.ID,
		Status:         models.TransactionActive,
		MeetupStatus:   models.MeetupNotScheduled,
		AgreedPrice:    offer.Amount,
		BuyerID:        offer.BuyerID,
		SellerID:       offer.SellerID,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.reserveProduct(ctx, offer.ConversationID)
	s.appendSystemMessage(ctx, offer.ConversationID, userID, "Offer accepted! Set up your meetup.")
	s.events.Publish(realtime.EventOfferAccepted, offer.ConversationID, offer.BuyerID, offer.SellerID)
	slog.Info("Offer accepted", "offer_id", offer.ID, "transaction_id", tx.ID)
	return offer, tx, nil
}

// RejectOffer transitions a pending offer to rejected. Seller only.
func (s *OfferService) RejectOffer(ctx context.Context, userID, offerID string) (*models.Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	if userID != offer.SellerID {
		return nil, ErrNotSeller
	}
	if offer.Status != models.OfferPending {
		return nil, ErrOfferNotPending
	}

	offer.Status = models.OfferRejected
	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to reject offer: %w", err)
	}

	s.appendSystemMessage(ctx, offer.ConversationID, userID, "Offer declined")
	s.events.Publish(realtime.EventOfferRejected, offer.ConversationID, offer.BuyerID, offer.SellerID)
	slog.Info("Offer rejected", "offer_id", offer.ID)
	return offer, nil
}

// reserveProduct marks the conversation's product reserved after an offer
// is accepted. Failure is logged, not fatal: the transaction already exists
// and the listing status is advisory.
func (s *OfferService) reserveProduct(ctx context.Context, conversationID string) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		slog.Warn("reserveProduct: failed to load conversation", "conversation_id", conversationID, "error", err)
		return
	}
	if err := s.store.UpdateProductStatus(ctx, conv.ProductID, models.ProductReserved); err != nil {
		slog.Warn("reserveProduct: failed to update product", "product_id", conv.ProductID, "error", err)
	}
}

func (s *OfferService) appendSystemMessage(ctx context.Context, conversationID, senderID, content string) {
	appendSystemMessage(ctx, s.store, conversationID, senderID, content)
}

// appendSystemMessage records a server-generated notice in the chat.
// Best effort: a failed notice never fails the transition that caused it.
func appendSystemMessage(ctx context.Context, store storage.Store, conversationID, senderID, content string) {
	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    models.MessageSystem,
	}
	if err := store.CreateMessage(ctx, msg); err != nil {
		slog.Warn("failed to append system message", "conversation_id", conversationID, "error", err)
	}
}
