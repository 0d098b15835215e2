// Package client is the Go SDK for the negotiation API: an HTTP client,
// a shared websocket event socket, a per-conversation synchronizer that
// keeps local state converged on the server's, and a dispatcher that
// guards and serializes negotiation mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/models"
)

// APIError is a non-2xx response from the server. Message is the server's
// own message when it sent one; otherwise it is the caller's fallback for
// the action that failed.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client wraps the REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given server. token may be empty for
// pre-login calls and set later with SetToken.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Session is the register/login response.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account and stores the returned session token.
func (c *Client) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":       email,
		"displayName": displayName,
		"password":    password,
	}, &session, "Registration failed. Please try again.")
	if err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &session, "Login failed. Please try again.")
	if err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user, "Failed to load profile."); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetConversation fetches the authoritative composite view.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*models.ConversationView, error) {
	var view models.ConversationView
	path := "/api/conversations/" + conversationID
	if err := c.do(ctx, http.MethodGet, path, nil, &view, "Failed to load conversation."); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListConversations fetches the user's conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &convs, "Failed to load conversations."); err != nil {
		return nil, err
	}
	return convs, nil
}

// ListMessages fetches the full message history for a conversation.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	path := "/api/conversations/" + conversationID + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs, "Failed to load messages."); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a chat message.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*models.Message, error) {
	var msg models.Message
	path := "/api/conversations/" + conversationID + "/messages"
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"content": content,
	}, &msg, "Failed to send message.")
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead marks the conversation's incoming messages as read.
func (c *Client) MarkRead(ctx context.Context, conversationID string) error {
	path := "/api/conversations/" + conversationID + "/read"
	return c.do(ctx, http.MethodPost, path, struct{}{}, nil, "Failed to mark messages read.")
}

// CreateOffer places a new offer on a conversation.
func (c *Client) CreateOffer(ctx context.Context, conversationID string, amount decimal.Decimal) (*models.Offer, error) {
	var offer models.Offer
	err := c.do(ctx, http.MethodPost, "/api/offers", map[string]string{
		"conversationId": conversationID,
		"amount":         amount.String(),
	}, &offer, "Failed to send offer. Please try again.")
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// UpdateOffer changes the amount of a pending offer.
func (c *Client) UpdateOffer(ctx context.Context, offerID string, amount decimal.Decimal) (*models.Offer, error) {
	var offer models.Offer
	err := c.do(ctx, http.MethodPatch, "/api/offers/"+offerID, map[string]string{
		"amount": amount.String(),
	}, &offer, "Failed to update offer. Please try again.")
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// AcceptOfferResult is the accepted offer plus the transaction the
// acceptance created.
type AcceptOfferResult struct {
	Offer       models.Offer       `json:"offer"`
	Transaction models.Transaction `json:"transaction"`
}

// AcceptOffer accepts a pending offer.
func (c *Client) AcceptOffer(ctx context.Context, offerID string) (*AcceptOfferResult, error) {
	var result AcceptOfferResult
	path := "/api/offers/" + offerID + "/accept"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &result, "Failed to accept offer. Please try again."); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectOffer rejects a pending offer.
func (c *Client) RejectOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	var offer models.Offer
	path := "/api/offers/" + offerID + "/reject"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &offer, "Failed to reject offer. Please try again."); err != nil {
		return nil, err
	}
	return &offer, nil
}

// ProposeMeetup proposes a meetup time and place for a transaction.
func (c *Client) ProposeMeetup(ctx context.Context, transactionID string, at time.Time, location string, coords models.Coordinates) (*models.Transaction, error) {
	var tx models.Transaction
	path := "/api/transactions/" + transactionID + "/propose-meetup"
	err := c.do(ctx, http.MethodPost, path, map[string]any{
		"scheduledAt": at,
		"location":    location,
		"coordinates": coords,
	}, &tx, "Failed to schedule meetup. Please try again.")
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// AcceptMeetup confirms the counterpart's meetup proposal.
func (c *Client) AcceptMeetup(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	path := "/api/transactions/" + transactionID + "/accept-meetup"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &tx, "Failed to confirm meetup. Please try again."); err != nil {
		return nil, err
	}
	return &tx, nil
}

// SocketURL returns the websocket endpoint with the session token attached.
func (c *Client) SocketURL() string {
	scheme := "ws"
	base := c.baseURL
	if len(base) >= 5 && base[:5] == "https" {
		scheme = "wss"
		base = base[5:]
	} else if len(base) >= 4 && base[:4] == "http" {
		base = base[4:]
	}
	return scheme + base + "/ws?token=" + c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the server's message verbatim when it sent one.
		var serverErr struct {
			Message string `json:"message"`
		}
		message := fallback
		if err := json.NewDecoder(resp.Body).Decode(&serverErr); err == nil && serverErr.Message != "" {
			message = serverErr.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
