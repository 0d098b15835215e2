package auth

import (
	"context"

	"github.com/palengke-ph/backend/internal/models"
)

// Authenticator abstracts the credential scheme so the HTTP layer does not
// depend on passwords specifically.
type Authenticator interface {
	// Register creates a new account. The credential format depends on
	// the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the account.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the
	// implementation's requirements before any storage work happens.
	ValidateCredential(credential string) error
}
