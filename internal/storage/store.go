// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/palengke-ph/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for marketplace storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Products
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProductStatus(ctx context.Context, id string, status models.ProductStatus) error

	// Conversations
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error)

	// Offers
	CreateOffer(ctx context.Context, offer *models.Offer) error
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	UpdateOffer(ctx context.Context, offer *models.Offer) error
	// LatestOfferByConversation returns the most recently created offer
	// for the conversation, or ErrNotFound if none exists.
	LatestOfferByConversation(ctx context.Context, conversationID string) (*models.Offer, error)

	// Transactions
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	// ActiveTransactionByConversation returns the conversation's single
	// active transaction, or ErrNotFound if none exists.
	ActiveTransactionByConversation(ctx context.Context, conversationID string) (*models.Transaction, error)

	// Messages
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	// MarkMessagesRead marks all messages in the conversation not sent by
	// readerID as read and returns the number of rows affected.
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
