package models

import "time"

// Conversation is the buyer/seller thread attached to a product listing.
type Conversation struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	BuyerID   string    `json:"buyerId"`
	SellerID  string    `json:"sellerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Party reports whether userID participates in the conversation.
func (c *Conversation) Party(userID string) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// Counterpart returns the other participant's user ID, or "" if userID
// is not a participant.
func (c *Conversation) Counterpart(userID string) string {
	switch userID {
	case c.BuyerID:
		return c.SellerID
	case c.SellerID:
		return c.BuyerID
	}
	return ""
}

// ConversationView is the composite the client renders a chat screen from:
// the product being negotiated, the opposite party, the latest offer, and
// the active transaction if the offer was accepted. Offer and Transaction
// are nil when absent.
type ConversationView struct {
	Conversation Conversation  `json:"conversation"`
	Product      Product       `json:"product"`
	OppositeUser PublicProfile `json:"oppositeUser"`
	Offer        *Offer        `json:"offer"`
	Transaction  *Transaction  `json:"transaction"`
}
