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

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, avatar_url, identity_verified, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
		user.IdentityVerified,
		user.PasswordHash,
		unix(user.CreatedAt),
		unix(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, avatar_url, identity_verified, password_hash, created_at, updated_at
		FROM users
		WHERE `+where,
		arg,
	).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.IdentityVerified,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updatedAt)
	return user, nil
}
