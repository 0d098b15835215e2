package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/middleware"
	"github.com/palengke-ph/backend/internal/models"
)

type createOfferRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
}

type updateOfferRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// acceptOfferResponse bundles the accepted offer with the transaction the
// acceptance created.
type acceptOfferResponse struct {
	Offer       *models.Offer       `json:"offer"`
	Transaction *models.Transaction `json:"transaction"`
}

func (s *Server) createOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "conversationId and amount are required"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amount must be a decimal string"})
		return
	}

	offer, err := s.offers.CreateOffer(c.Request.Context(), middleware.GetUserID(c), req.ConversationID, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (s *Server) updateOffer(c *gin.Context) {
	var req updateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amount is required"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amount must be a decimal string"})
		return
	}

	offer, err := s.offers.UpdateOffer(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (s *Server) acceptOffer(c *gin.Context) {
	offer, tx, err := s.offers.AcceptOffer(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acceptOfferResponse{Offer: offer, Transaction: tx})
}

func (s *Server) rejectOffer(c *gin.Context) {
	offer, err := s.offers.RejectOffer(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}
