// Package models defines the core domain models for the marketplace
// negotiation subsystem.
//
// # Models
//
//   - User: registered account (buyer and/or seller)
//   - Product: a listing a buyer can make offers on
//   - Conversation: the buyer/seller thread attached to a product
//   - Offer: a proposed price pending seller acceptance
//   - Transaction: the post-acceptance record tracking the meetup arrangement
//   - Message: a chat message within a conversation
//
// # Design Principles
//
//  1. All state transitions are authoritative on the server: clients request
//     mutations, they never write status fields directly.
//  2. Offer and transaction statuses are monotonic once terminal.
//  3. Avoid circular references: relationships use ID strings, not pointers.
//  4. Money fields use decimal.Decimal, never floats.
package models
