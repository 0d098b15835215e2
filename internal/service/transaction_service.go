package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/realtime"
	"github.com/palengke-ph/backend/internal/storage"
)

// TransactionService owns the meetup arrangement on active transactions.
type TransactionService struct {
	store  storage.Store
	events realtime.Publisher
	// now is swappable for tests.
	now func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store, events realtime.Publisher) *TransactionService {
	return &TransactionService{store: store, events: events, now: time.Now}
}

// ProposeMeetup schedules or reschedules the meetup on an active
// transaction. Either party may propose; the proposal replaces any earlier
// unconfirmed one and records the caller as proposer. The timestamp must be
// in the future and the location must carry both an address and
// coordinates.
func (s *TransactionService) ProposeMeetup(ctx context.Context, userID, transactionID string, at time.Time, location string, coords models.Coordinates) (*models.Transaction, error) {
	if !at.After(s.now()) {
		return nil, ErrMeetupInPast
	}
	if location == "" || coords.Address == "" {
		return nil, ErrMeetupLocationMissing
	}

	tx, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if !tx.Party(userID) {
		return nil, ErrNotParty
	}
	if tx.Status != models.TransactionActive {
		return nil, ErrTransactionNotActive
	}
	if tx.MeetupStatus == models.MeetupConfirmed {
		return nil, ErrMeetupConfirmed
	}

	at = at.UTC()
	tx.MeetupStatus = models.MeetupScheduled
	tx.ScheduledMeetupAt = &at
	tx.MeetupLocation = location
	tx.MeetupCoordinates = &coords
	tx.MeetupProposedBy = userID
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save meetup proposal: %w", err)
	}

	appendSystemMessage(ctx, s.store, tx.ConversationID, userID,
		fmt.Sprintf("Proposed meetup at %s, %s", location, at.Format("Jan 2 3:04 PM")))
	s.events.Publish(realtime.EventMeetupProposed, tx.ConversationID, tx.BuyerID, tx.SellerID)
	slog.Info("Meetup proposed",
		"transaction_id", tx.ID,
		"proposed_by", userID,
		"scheduled_at", at,
	)
	return tx, nil
}

// AcceptMeetup confirms the current proposal. Only the party who did not
// propose may accept; on legacy rows with no recorded proposer either party
// may.
func (s *TransactionService) AcceptMeetup(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if !tx.Party(userID) {
		return nil, ErrNotParty
	}
	if tx.Status != models.TransactionActive {
		return nil, ErrTransactionNotActive
	}
	if tx.MeetupStatus != models.MeetupScheduled {
		return nil, ErrMeetupNotScheduled
	}
	if tx.MeetupProposedBy != "" && tx.MeetupProposedBy == userID {
		return nil, ErrOwnProposal
	}

	tx.MeetupStatus = models.MeetupConfirmed
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to confirm meetup: %w", err)
	}

	appendSystemMessage(ctx, s.store, tx.ConversationID, userID, "Meetup confirmed")
	s.events.Publish(realtime.EventMeetupAccepted, tx.ConversationID, tx.BuyerID, tx.SellerID)
	slog.Info("Meetup accepted", "transaction_id", tx.ID, "accepted_by", userID)
	return tx, nil
}
