package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "palengke-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedConversation creates a seller, buyer, product, and conversation and
// returns the conversation.
func seedConversation(t *testing.T, store *SQLiteStore) *models.Conversation {
	t.Helper()
	ctx := context.Background()

	seller := models.NewUser("seller+"+t.Name()+"@example.com", "Maria", "hash")
	buyer := models.NewUser("buyer+"+t.Name()+"@example.com", "Jun", "hash")
	for _, u := range []*models.User{seller, buyer} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	product := &models.Product{
		SellerID: seller.ID,
		Title:    "Mountain bike",
		Price:    decimal.NewFromInt(6500),
	}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	conv := &models.Conversation{
		ProductID: product.ID,
		BuyerID:   buyer.ID,
		SellerID:  seller.ID,
	}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	return conv
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamps", func(t *testing.T) {
		user := &models.User{
			Email:        "ana@example.com",
			DisplayName:  "Ana",
			PasswordHash: "hash",
		}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetUserByEmail(ctx, "ana@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID || got.DisplayName != "Ana" {
			t.Errorf("Got user %+v, want ID=%s DisplayName=Ana", got, user.ID)
		}
	})

	t.Run("GetUserByID returns ErrNotFound for missing user", func(t *testing.T) {
		if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Offer round trip preserves decimal amount", func(t *testing.T) {
		conv := seedConversation(t, store)

		offer := &models.Offer{
			ConversationID: conv.ID,
			Amount:         decimal.RequireFromString("5999.50"),
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
		}
		if err := store.CreateOffer(ctx, offer); err != nil {
			t.Fatalf("CreateOffer failed: %v", err)
		}
		if offer.Status != models.OfferPending {
			t.Errorf("Expected default status pending, got %s", offer.Status)
		}

		got, err := store.GetOffer(ctx, offer.ID)
		if err != nil {
			t.Fatalf("GetOffer failed: %v", err)
		}
		if !got.Amount.Equal(offer.Amount) {
			t.Errorf("Amount = %s, want %s", got.Amount, offer.Amount)
		}
	})

	t.Run("LatestOfferByConversation returns newest offer", func(t *testing.T) {
		conv := seedConversation(t, store)

		old := &models.Offer{
			ConversationID: conv.ID,
			Amount:         decimal.NewFromInt(100),
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
			CreatedAt:      time.Now().UTC().Add(-time.Hour),
		}
		newer := &models.Offer{
			ConversationID: conv.ID,
			Amount:         decimal.NewFromInt(200),
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
		}
		for _, o := range []*models.Offer{old, newer} {
			if err := store.CreateOffer(ctx, o); err != nil {
				t.Fatalf("CreateOffer failed: %v", err)
			}
		}

		got, err := store.LatestOfferByConversation(ctx, conv.ID)
		if err != nil {
			t.Fatalf("LatestOfferByConversation failed: %v", err)
		}
		if got.ID != newer.ID {
			t.Errorf("Latest offer = %s, want %s", got.ID, newer.ID)
		}
	})

	t.Run("LatestOfferByConversation breaks same-second ties by insertion order", func(t *testing.T) {
		conv := seedConversation(t, store)
		createdAt := time.Now().UTC()

		// The rejected offer's ID sorts first lexically; an ID tiebreak
		// would wrongly pin the conversation to it.
		rejected := &models.Offer{
			ID:             "aaaa-rejected",
			ConversationID: conv.ID,
			Amount:         decimal.NewFromInt(100),
			Status:         models.OfferRejected,
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
			CreatedAt:      createdAt,
		}
		pending := &models.Offer{
			ID:             "zzzz-pending",
			ConversationID: conv.ID,
			Amount:         decimal.NewFromInt(120),
			Status:         models.OfferPending,
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
			CreatedAt:      createdAt,
		}
		for _, o := range []*models.Offer{rejected, pending} {
			if err := store.CreateOffer(ctx, o); err != nil {
				t.Fatalf("CreateOffer failed: %v", err)
			}
		}

		got, err := store.LatestOfferByConversation(ctx, conv.ID)
		if err != nil {
			t.Fatalf("LatestOfferByConversation failed: %v", err)
		}
		if got.ID != pending.ID {
			t.Errorf("Latest offer = %s (status %s), want %s", got.ID, got.Status, pending.ID)
		}
	})

	t.Run("Transaction round trip with meetup fields", func(t *testing.T) {
		conv := seedConversation(t, store)

		offer := &models.Offer{
			ConversationID: conv.ID,
			Amount:         decimal.NewFromInt(6000),
			Status:         models.OfferAccepted,
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
		}
		if err := store.CreateOffer(ctx, offer); err != nil {
			t.Fatalf("CreateOffer failed: %v", err)
		}

		tx := &models.Transaction{
			ConversationID: conv.ID,
			OfferID:        offer.ID,
			AgreedPrice:    offer.Amount,
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		if tx.MeetupStatus != models.MeetupNotScheduled {
			t.Errorf("Expected default meetup status not_scheduled, got %s", tx.MeetupStatus)
		}

		at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		tx.MeetupStatus = models.MeetupScheduled
		tx.ScheduledMeetupAt = &at
		tx.MeetupLocation = "Park Ave"
		tx.MeetupCoordinates = &models.Coordinates{Lat: 14.55, Lng: 121.02, Address: "Park Ave"}
		tx.MeetupProposedBy = conv.BuyerID
		if err := store.UpdateTransaction(ctx, tx); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}

		got, err := store.ActiveTransactionByConversation(ctx, conv.ID)
		if err != nil {
			t.Fatalf("ActiveTransactionByConversation failed: %v", err)
		}
		if got.MeetupStatus != models.MeetupScheduled {
			t.Errorf("MeetupStatus = %s, want scheduled", got.MeetupStatus)
		}
		if got.ScheduledMeetupAt == nil || !got.ScheduledMeetupAt.Equal(at) {
			t.Errorf("ScheduledMeetupAt = %v, want %v", got.ScheduledMeetupAt, at)
		}
		if got.MeetupCoordinates == nil || got.MeetupCoordinates.Address != "Park Ave" {
			t.Errorf("MeetupCoordinates = %+v, want Park Ave", got.MeetupCoordinates)
		}
		if got.MeetupProposedBy != conv.BuyerID {
			t.Errorf("MeetupProposedBy = %s, want %s", got.MeetupProposedBy, conv.BuyerID)
		}
	})

	t.Run("ActiveTransactionByConversation ignores terminal transactions", func(t *testing.T) {
		conv := seedConversation(t, store)

		offer := &models.Offer{
			ConversationID: conv.ID,
			Amount:         decimal.NewFromInt(1000),
			Status:         models.OfferAccepted,
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
		}
		if err := store.CreateOffer(ctx, offer); err != nil {
			t.Fatalf("CreateOffer failed: %v", err)
		}

		tx := &models.Transaction{
			ConversationID: conv.ID,
			OfferID:        offer.ID,
			Status:         models.TransactionCancelled,
			AgreedPrice:    offer.Amount,
			BuyerID:        conv.BuyerID,
			SellerID:       conv.SellerID,
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		if _, err := store.ActiveTransactionByConversation(ctx, conv.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Messages list in order and mark read", func(t *testing.T) {
		conv := seedConversation(t, store)

		first := &models.Message{
			ConversationID: conv.ID,
			SenderID:       conv.BuyerID,
			Content:        "Is this still available?",
			CreatedAt:      time.Now().UTC().Add(-2 * time.Minute),
		}
		second := &models.Message{
			ConversationID: conv.ID,
			SenderID:       conv.SellerID,
			Content:        "Yes it is",
			CreatedAt:      time.Now().UTC().Add(-time.Minute),
		}
		for _, m := range []*models.Message{first, second} {
			if err := store.CreateMessage(ctx, m); err != nil {
				t.Fatalf("CreateMessage failed: %v", err)
			}
		}

		msgs, err := store.ListMessages(ctx, conv.ID)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].ID != first.ID {
			t.Errorf("Expected oldest message first")
		}

		// Buyer reads: only the seller's message flips.
		n, err := store.MarkMessagesRead(ctx, conv.ID, conv.BuyerID)
		if err != nil {
			t.Fatalf("MarkMessagesRead failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 message marked, got %d", n)
		}

		msgs, err = store.ListMessages(ctx, conv.ID)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		for _, m := range msgs {
			wantRead := m.SenderID == conv.SellerID
			if m.IsRead != wantRead {
				t.Errorf("Message from %s: IsRead = %v, want %v", m.SenderID, m.IsRead, wantRead)
			}
			if wantRead && m.ReadAt == nil {
				t.Error("Expected ReadAt to be set on read message")
			}
		}
	})
}
