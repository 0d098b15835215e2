package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrEmailInvalid       = errors.New("a valid email address is required")
)

// UserStorage is the slice of the store the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PasswordAuthenticator implements password auth with bcrypt hashes.
type PasswordAuthenticator struct {
	storage UserStorage
}

func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// ValidateCredential checks minimum password requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user with a hashed password. Emails are stored
// lowercased so lookups are case-insensitive.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrEmailInvalid
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	_, err := a.storage.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, displayName, string(hashed))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email and password. A missing account and a
// wrong password return the same error.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
