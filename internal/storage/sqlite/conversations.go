package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

// CreateConversation inserts a new buyer/seller thread.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, product_id, buyer_id, seller_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		conv.ID,
		conv.ProductID,
		conv.BuyerID,
		conv.SellerID,
		unix(conv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, buyer_id, seller_id, created_at
		FROM conversations
		WHERE id = ?`,
		id,
	).Scan(&conv.ID, &conv.ProductID, &conv.BuyerID, &conv.SellerID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	conv.CreatedAt = fromUnix(createdAt)
	return conv, nil
}

// ListConversationsByUser returns all conversations the user participates
// in, newest first.
func (s *SQLiteStore) ListConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, buyer_id, seller_id, created_at
		FROM conversations
		WHERE buyer_id = ? OR seller_id = ?
		ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		var createdAt int64
		if err := rows.Scan(&conv.ID, &conv.ProductID, &conv.BuyerID, &conv.SellerID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt = fromUnix(createdAt)
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return convs, nil
}
