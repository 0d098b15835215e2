package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus is the negotiation state of an offer.
// Transitions are one-directional: once an offer leaves pending it can
// never return.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferExpired   OfferStatus = "expired"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// Terminal reports whether the status permits no further transitions.
func (s OfferStatus) Terminal() bool {
	return s != OfferPending
}

// Offer represents a price negotiation on a product, created by a buyer
// and resolved by the seller.
type Offer struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversationId"`
	Amount         decimal.Decimal `json:"amount"`
	Status         OfferStatus     `json:"status"`
	BuyerID        string          `json:"buyerId"`
	SellerID       string          `json:"sellerId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
