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

// CreateTransaction inserts a new transaction record.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = now
	}
	if tx.Status == "" {
		tx.Status = models.TransactionActive
	}
	if tx.MeetupStatus == "" {
		tx.MeetupStatus = models.MeetupNotScheduled
	}

	lat, lng, address := coordsColumns(tx.MeetupCoordinates)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, conversation_id, offer_id, status, meetup_status,
			scheduled_meetup_at, meetup_location, meetup_lat, meetup_lng, meetup_address,
			meetup_proposed_by, agreed_price, buyer_id, seller_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.ConversationID,
		tx.OfferID,
		string(tx.Status),
		string(tx.MeetupStatus),
		nullUnix(tx.ScheduledMeetupAt),
		tx.MeetupLocation,
		lat,
		lng,
		address,
		tx.MeetupProposedBy,
		tx.AgreedPrice.String(),
		tx.BuyerID,
		tx.SellerID,
		unix(tx.CreatedAt),
		unix(tx.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.getTransaction(ctx, "id = ?", id)
}

// ActiveTransactionByConversation returns the conversation's single active
// transaction.
func (s *SQLiteStore) ActiveTransactionByConversation(ctx context.Context, conversationID string) (*models.Transaction, error) {
	return s.getTransaction(ctx, "conversation_id = ? AND status = 'active'", conversationID)
}

func (s *SQLiteStore) getTransaction(ctx context.Context, where string, arg any) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var status, meetupStatus, agreedPrice string
	var scheduledAt sql.NullInt64
	var lat, lng sql.NullFloat64
	var address sql.NullString
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, offer_id, status, meetup_status,
			scheduled_meetup_at, meetup_location, meetup_lat, meetup_lng, meetup_address,
			meetup_proposed_by, agreed_price, buyer_id, seller_id, created_at, updated_at
		FROM transactions
		WHERE `+where,
		arg,
	).Scan(
		&tx.ID,
		&tx.ConversationID,
		&tx.OfferID,
		&status,
		&meetupStatus,
		&scheduledAt,
		&tx.MeetupLocation,
		&lat,
		&lng,
		&address,
		&tx.MeetupProposedBy,
		&agreedPrice,
		&tx.BuyerID,
		&tx.SellerID,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	tx.Status = models.TransactionStatus(status)
	tx.MeetupStatus = models.MeetupStatus(meetupStatus)
	tx.ScheduledMeetupAt = fromNullUnix(scheduledAt)
	if lat.Valid && lng.Valid {
		tx.MeetupCoordinates = &models.Coordinates{
			Lat:     lat.Float64,
			Lng:     lng.Float64,
			Address: address.String,
		}
	}
	tx.AgreedPrice, err = decimal.NewFromString(agreedPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to parse agreed price: %w", err)
	}
	tx.CreatedAt = fromUnix(createdAt)
	tx.UpdatedAt = fromUnix(updatedAt)
	return tx, nil
}

// UpdateTransaction persists the transaction's mutable fields (status and
// meetup arrangement).
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now().UTC()
	lat, lng, address := coordsColumns(tx.MeetupCoordinates)
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, meetup_status = ?, scheduled_meetup_at = ?,
			meetup_location = ?, meetup_lat = ?, meetup_lng = ?, meetup_address = ?,
			meetup_proposed_by = ?, updated_at = ?
		WHERE id = ?`,
		string(tx.Status),
		string(tx.MeetupStatus),
		nullUnix(tx.ScheduledMeetupAt),
		tx.MeetupLocation,
		lat,
		lng,
		address,
		tx.MeetupProposedBy,
		unix(tx.UpdatedAt),
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func coordsColumns(c *models.Coordinates) (lat, lng sql.NullFloat64, address sql.NullString) {
	if c == nil {
		return
	}
	lat = sql.NullFloat64{Float64: c.Lat, Valid: true}
	lng = sql.NullFloat64{Float64: c.Lng, Valid: true}
	address = sql.NullString{String: c.Address, Valid: true}
	return
}
