package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the overall lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionActive    TransactionStatus = "active"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionCompleted TransactionStatus = "completed"
)

// Terminal reports whether the transaction permits no further mutation.
func (s TransactionStatus) Terminal() bool {
	return s != TransactionActive
}

// MeetupStatus is the sub-state of the in-person exchange arrangement.
// It progresses not_scheduled -> scheduled -> confirmed.
type MeetupStatus string

const (
	MeetupNotScheduled MeetupStatus = "not_scheduled"
	MeetupScheduled    MeetupStatus = "scheduled"
	MeetupConfirmed    MeetupStatus = "confirmed"
)

// Coordinates is a geocoded meetup location.
type Coordinates struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Transaction represents the post-acceptance record tracking the meetup
// arrangement between buyer and seller. It is created server-side when an
// offer transitions to accepted; a conversation has at most one active
// transaction.
//
// Invariant: ScheduledMeetupAt and MeetupLocation are both set or both
// absent. MeetupProposedBy is set whenever MeetupStatus != not_scheduled,
// except on legacy rows that predate proposer tracking.
type Transaction struct {
	ID                string            `json:"id"`
	ConversationID    string            `json:"conversationId"`
	OfferID           string            `json:"offerId"`
	Status            TransactionStatus `json:"status"`
	MeetupStatus      MeetupStatus      `json:"meetupStatus"`
	ScheduledMeetupAt *time.Time        `json:"scheduledMeetupAt"`
	MeetupLocation    string            `json:"meetupLocation,omitempty"`
	MeetupCoordinates *Coordinates      `json:"meetupCoordinates"`
	MeetupProposedBy  string            `json:"meetupProposedBy,omitempty"`
	AgreedPrice       decimal.Decimal   `json:"agreedPrice"`
	BuyerID           string            `json:"buyerId"`
	SellerID          string            `json:"sellerId"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Party reports whether userID is the buyer or seller on this transaction.
func (t *Transaction) Party(userID string) bool {
	return userID == t.BuyerID || userID == t.SellerID
}

// Counterpart returns the other party's user ID, or "" if userID is not
// a party.
func (t *Transaction) Counterpart(userID string) string {
	switch userID {
	case t.BuyerID:
		return t.SellerID
	case t.SellerID:
		return t.BuyerID
	}
	return ""
}
