package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/palengke-ph/backend/internal/middleware"
	"github.com/palengke-ph/backend/internal/models"
)

type proposeMeetupRequest struct {
	ScheduledAt time.Time          `json:"scheduledAt" binding:"required"`
	Location    string             `json:"location" binding:"required"`
	Coordinates models.Coordinates `json:"coordinates"`
}

func (s *Server) proposeMeetup(c *gin.Context) {
	var req proposeMeetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "scheduledAt and location are required"})
		return
	}

	tx, err := s.transactions.ProposeMeetup(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Param("id"),
		req.ScheduledAt,
		req.Location,
		req.Coordinates,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (s *Server) acceptMeetup(c *gin.Context) {
	tx, err := s.transactions.AcceptMeetup(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
