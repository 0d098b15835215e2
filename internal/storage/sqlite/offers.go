package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

// CreateOffer inserts a new offer.
func (s *SQLiteStore) CreateOffer(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = now
	}
	if offer.UpdatedAt.IsZero() {
		offer.UpdatedAt = now
	}
	if offer.Status == "" {
		offer.Status = models.OfferPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offers (id, conversation_id, amount, status, buyer_id, seller_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID,
		offer.ConversationID,
		offer.Amount.String(),
		string(offer.Status),
		offer.BuyerID,
		offer.SellerID,
		unix(offer.CreatedAt),
		unix(offer.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

// GetOffer retrieves an offer by ID.
func (s *SQLiteStore) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	return s.getOffer(ctx, "id = ?", id)
}

// LatestOfferByConversation returns the most recently created offer for
// the conversation. created_at has second resolution, so ties are broken
// by insertion order via rowid.
func (s *SQLiteStore) LatestOfferByConversation(ctx context.Context, conversationID string) (*models.Offer, error) {
	return s.getOffer(ctx, "conversation_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1", conversationID)
}

func (s *SQLiteStore) getOffer(ctx context.Context, where string, arg any) (*models.Offer, error) {
	offer := &models.Offer{}
	var amount, status string
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, amount, status, buyer_id, seller_id, created_at, updated_at
		FROM offers
		WHERE `+where,
		arg,
	).Scan(
		&offer.ID,
		&offer.ConversationID,
		&amount,
		&status,
		&offer.BuyerID,
		&offer.SellerID,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	offer.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse offer amount: %w", err)
	}
	offer.Status = models.OfferStatus(status)
	offer.CreatedAt = fromUnix(createdAt)
	offer.UpdatedAt = fromUnix(updatedAt)
	return offer, nil
}

// UpdateOffer persists the offer's amount and status.
func (s *SQLiteStore) UpdateOffer(ctx context.Context, offer *models.Offer) error {
	offer.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE offers
		SET amount = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		offer.Amount.String(),
		string(offer.Status),
		unix(offer.UpdatedAt),
		offer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
