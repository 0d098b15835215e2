// Package service implements the authoritative negotiation transitions.
// Clients only ever request these mutations; every rule is enforced here
// regardless of what the client-side projection chose to present.
package service

import "errors"

var (
	ErrNotParty              = errors.New("you are not part of this conversation")
	ErrNotSeller             = errors.New("only the seller can respond to an offer")
	ErrNotBuyer              = errors.New("only the buyer can update an offer")
	ErrOfferNotPending       = errors.New("offer is no longer pending")
	ErrOfferAlreadyPending   = errors.New("an offer is already pending for this conversation")
	ErrAmountInvalid         = errors.New("offer amount must be greater than zero")
	ErrOwnListing            = errors.New("you cannot make an offer on your own listing")
	ErrTransactionNotActive  = errors.New("transaction is not active")
	ErrMeetupConfirmed       = errors.New("meetup is already confirmed")
	ErrMeetupNotScheduled    = errors.New("no meetup proposal to accept")
	ErrMeetupInPast          = errors.New("meetup time must be in the future")
	ErrMeetupLocationMissing = errors.New("meetup location and coordinates are required")
	ErrOwnProposal           = errors.New("you cannot accept your own meetup proposal")
	ErrEmptyMessage          = errors.New("message content is required")
)
