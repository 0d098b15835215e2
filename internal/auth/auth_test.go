package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

// memoryUserStorage is an in-memory UserStorage for tests.
type memoryUserStorage struct {
	byEmail map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{byEmail: make(map[string]*models.User)}
}

func (s *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	s.byEmail[user.Email] = user
	return nil
}

func (s *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (s *memoryUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUserStorage())

	user, err := a.Register(ctx, "Maria@Example.com", "Maria", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "maria@example.com" {
		t.Errorf("email = %s, want lowercased", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plaintext")
	}

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := a.Register(ctx, "maria@example.com", "Maria", "correct horse"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("err = %v, want ErrEmailExists", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		if _, err := a.Register(ctx, "jun@example.com", "Jun", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("err = %v, want ErrWeakPassword", err)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		if _, err := a.Register(ctx, "not-an-email", "X", "correct horse"); !errors.Is(err, ErrEmailInvalid) {
			t.Errorf("err = %v, want ErrEmailInvalid", err)
		}
	})

	t.Run("authenticate", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "maria@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("user ID = %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("wrong password and unknown email look alike", func(t *testing.T) {
		_, errWrong := a.Authenticate(ctx, "maria@example.com", "wrong password")
		_, errUnknown := a.Authenticate(ctx, "nobody@example.com", "correct horse")
		if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
			t.Errorf("errs = %v / %v, want ErrInvalidCredentials for both", errWrong, errUnknown)
		}
	})
}

func TestJWTManager(t *testing.T) {
	user := models.NewUser("maria@example.com", "Maria", "hash")
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Errorf("claims = %s/%s, want %s/%s", claims.UserID, claims.Email, user.ID, user.Email)
	}

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}
