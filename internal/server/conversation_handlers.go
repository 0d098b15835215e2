package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palengke-ph/backend/internal/middleware"
	"github.com/palengke-ph/backend/internal/models"
)

type startConversationRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func (s *Server) startConversation(c *gin.Context) {
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId is required"})
		return
	}

	conv, err := s.conversations.StartConversation(c.Request.Context(), middleware.GetUserID(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (s *Server) listConversations(c *gin.Context) {
	convs, err := s.conversations.ListConversations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (s *Server) getConversation(c *gin.Context) {
	view, err := s.conversations.GetConversation(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type sendMessageRequest struct {
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"messageType"`
	ImageURL    string             `json:"imageUrl"`
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid message body"})
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageText
	}

	msg, err := s.messages.Send(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Content, req.MessageType, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *Server) listMessages(c *gin.Context) {
	msgs, err := s.messages.List(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) markRead(c *gin.Context) {
	if err := s.messages.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
