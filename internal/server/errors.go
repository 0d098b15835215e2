package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palengke-ph/backend/internal/auth"
	"github.com/palengke-ph/backend/internal/service"
	"github.com/palengke-ph/backend/internal/storage"
)

// respondError maps service errors onto HTTP statuses. The body always
// carries a human-readable message the client can surface as-is.
func respondError(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(statusFor(err), gin.H{"message": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotParty),
		errors.Is(err, service.ErrNotSeller),
		errors.Is(err, service.ErrNotBuyer),
		errors.Is(err, service.ErrOwnProposal):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, service.ErrOfferNotPending),
		errors.Is(err, service.ErrOfferAlreadyPending),
		errors.Is(err, service.ErrTransactionNotActive),
		errors.Is(err, service.ErrMeetupConfirmed):
		return http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailInvalid),
		errors.Is(err, service.ErrAmountInvalid),
		errors.Is(err, service.ErrOwnListing),
		errors.Is(err, service.ErrMeetupInPast),
		errors.Is(err, service.ErrMeetupNotScheduled),
		errors.Is(err, service.ErrMeetupLocationMissing),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
