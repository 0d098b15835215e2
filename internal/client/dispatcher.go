package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/models"
)

var (
	// ErrRequestInFlight means the same action on the same target is
	// already running. The caller should wait, not retry.
	ErrRequestInFlight = errors.New("request already in progress")

	ErrMeetupInPast         = errors.New("meetup time must be in the future")
	ErrMeetupLocationNeeded = errors.New("a meetup location with coordinates is required")
	ErrOfferAmountInvalid   = errors.New("offer amount must be greater than zero")
)

// Mutator is the write surface Dispatcher drives. Client implements it.
type Mutator interface {
	AcceptOffer(ctx context.Context, offerID string) (*AcceptOfferResult, error)
	RejectOffer(ctx context.Context, offerID string) (*models.Offer, error)
	UpdateOffer(ctx context.Context, offerID string, amount decimal.Decimal) (*models.Offer, error)
	ProposeMeetup(ctx context.Context, transactionID string, at time.Time, location string, coords models.Coordinates) (*models.Transaction, error)
	AcceptMeetup(ctx context.Context, transactionID string) (*models.Transaction, error)
}

// Dispatcher serializes negotiation mutations: at most one in-flight
// request per action per target, client-side validation before anything
// goes on the wire, an authoritative refetch after success, and no
// automatic retry: a failed mutation surfaces its error and stops.
type Dispatcher struct {
	api Mutator

	// OnSuccess, when set, runs after every successful mutation. Wire it
	// to the conversation's refetch.
	OnSuccess func()

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewDispatcher(api Mutator) *Dispatcher {
	return &Dispatcher{
		api:      api,
		inFlight: make(map[string]struct{}),
	}
}

// begin claims the action/target slot or reports it busy.
func (d *Dispatcher) begin(action, targetID string) (func(), error) {
	key := action + ":" + targetID
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[key]; busy {
		return nil, ErrRequestInFlight
	}
	d.inFlight[key] = struct{}{}
	return func() {
		d.mu.Lock()
		delete(d.inFlight, key)
		d.mu.Unlock()
	}, nil
}

func (d *Dispatcher) finish(err error) {
	if err == nil && d.OnSuccess != nil {
		d.OnSuccess()
	}
}

// AcceptOffer accepts the offer and returns the created transaction.
func (d *Dispatcher) AcceptOffer(ctx context.Context, offerID string) (*AcceptOfferResult, error) {
	done, err := d.begin("accept_offer", offerID)
	if err != nil {
		return nil, err
	}
	defer done()

	result, err := d.api.AcceptOffer(ctx, offerID)
	d.finish(err)
	return result, err
}

// RejectOffer declines the offer.
func (d *Dispatcher) RejectOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	done, err := d.begin("reject_offer", offerID)
	if err != nil {
		return nil, err
	}
	defer done()

	offer, err := d.api.RejectOffer(ctx, offerID)
	d.finish(err)
	return offer, err
}

// UpdateOffer changes a pending offer's amount.
func (d *Dispatcher) UpdateOffer(ctx context.Context, offerID string, amount decimal.Decimal) (*models.Offer, error) {
	if !amount.IsPositive() {
		return nil, ErrOfferAmountInvalid
	}

	done, err := d.begin("update_offer", offerID)
	if err != nil {
		return nil, err
	}
	defer done()

	offer, err := d.api.UpdateOffer(ctx, offerID, amount)
	d.finish(err)
	return offer, err
}

// ProposeMeetup validates the proposal locally, then dispatches it.
// Invalid proposals never reach the server.
func (d *Dispatcher) ProposeMeetup(ctx context.Context, transactionID string, at time.Time, location string, coords models.Coordinates) (*models.Transaction, error) {
	if !at.After(time.Now()) {
		return nil, ErrMeetupInPast
	}
	if location == "" || coords.Address == "" {
		return nil, ErrMeetupLocationNeeded
	}

	done, err := d.begin("propose_meetup", transactionID)
	if err != nil {
		return nil, err
	}
	defer done()

	tx, err := d.api.ProposeMeetup(ctx, transactionID, at, location, coords)
	d.finish(err)
	return tx, err
}

// AcceptMeetup confirms the counterpart's proposal.
func (d *Dispatcher) AcceptMeetup(ctx context.Context, transactionID string) (*models.Transaction, error) {
	done, err := d.begin("accept_meetup", transactionID)
	if err != nil {
		return nil, err
	}
	defer done()

	tx, err := d.api.AcceptMeetup(ctx, transactionID)
	d.finish(err)
	return tx, err
}
