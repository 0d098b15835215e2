package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palengke-ph/backend/internal/middleware"
	"github.com/palengke-ph/backend/internal/models"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email, displayName and password are required"})
		return
	}

	user, err := s.authenticator.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := s.jwt.Generate(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	user, err := s.authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := s.jwt.Generate(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) me(c *gin.Context) {
	user, err := s.store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
