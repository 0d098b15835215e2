package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/middleware"
	"github.com/palengke-ph/backend/internal/models"
)

type createProductRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	ImageURL    string `json:"imageUrl"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title and price are required"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "price must be a non-negative decimal"})
		return
	}

	product := &models.Product{
		SellerID:    middleware.GetUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
	}
	if err := s.store.CreateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.store.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
