package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/palengke-ph/backend/internal/models"
)

// CreateMessage inserts a new chat message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.MessageType == "" {
		msg.MessageType = models.MessageText
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type, image_url, is_read, read_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
		string(msg.MessageType),
		msg.ImageURL,
		msg.IsRead,
		nullUnix(msg.ReadAt),
		unix(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListMessages returns all messages in the conversation, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, content, message_type, image_url, is_read, read_at, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		var msgType string
		var readAt sql.NullInt64
		var createdAt int64
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Content,
			&msgType,
			&msg.ImageURL,
			&msg.IsRead,
			&readAt,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.MessageType = models.MessageType(msgType)
		msg.ReadAt = fromNullUnix(readAt)
		msg.CreatedAt = fromUnix(createdAt)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}

// MarkMessagesRead marks every message in the conversation not sent by
// readerID as read. Returns the number of messages updated.
func (s *SQLiteStore) MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET is_read = 1, read_at = ?
		WHERE conversation_id = ? AND sender_id != ? AND is_read = 0`,
		unix(time.Now().UTC()),
		conversationID,
		readerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count marked messages: %w", err)
	}
	return n, nil
}
