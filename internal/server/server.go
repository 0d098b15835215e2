// Package server wires the HTTP API: REST routes for auth, products,
// conversations, offers and transactions, the websocket push endpoint,
// and the operational endpoints.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/palengke-ph/backend/internal/auth"
	"github.com/palengke-ph/backend/internal/middleware"
	"github.com/palengke-ph/backend/internal/realtime"
	"github.com/palengke-ph/backend/internal/service"
	"github.com/palengke-ph/backend/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
	hub           *realtime.Hub

	offers        *service.OfferService
	transactions  *service.TransactionService
	conversations *service.ConversationService
	messages      *service.MessageService
}

// New creates a Server with its service layer assembled on top of the
// store and event hub.
func New(store storage.Store, jwt *auth.JWTManager, hub *realtime.Hub) *Server {
	return &Server{
		store:         store,
		authenticator: auth.NewPasswordAuthenticator(store),
		jwt:           jwt,
		hub:           hub,
		offers:        service.NewOfferService(store, hub),
		transactions:  service.NewTransactionService(store, hub),
		conversations: service.NewConversationService(store),
		messages:      service.NewMessageService(store, hub),
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", gin.WrapH(s.hub.Handler(s.authenticateToken)))

	api := router.Group("/api")
	{
		api.POST("/auth/register", s.register)
		api.POST("/auth/login", s.login)

		authed := api.Group("", middleware.RequireAuth(s.jwt))
		{
			authed.GET("/auth/me", s.me)

			authed.POST("/products", s.createProduct)
			authed.GET("/products/:id", s.getProduct)

			authed.POST("/conversations", s.startConversation)
			authed.GET("/conversations", s.listConversations)
			authed.GET("/conversations/:id", s.getConversation)
			authed.GET("/conversations/:id/messages", s.listMessages)
			authed.POST("/conversations/:id/messages", s.sendMessage)
			authed.POST("/conversations/:id/read", s.markRead)

			authed.POST("/offers", s.createOffer)
			authed.PATCH("/offers/:id", s.updateOffer)
			authed.POST("/offers/:id/accept", s.acceptOffer)
			authed.POST("/offers/:id/reject", s.rejectOffer)

			authed.POST("/transactions/:id/propose-meetup", s.proposeMeetup)
			authed.POST("/transactions/:id/accept-meetup", s.acceptMeetup)
		}
	}

	return router
}

// authenticateToken resolves a websocket query token to a user ID.
func (s *Server) authenticateToken(token string) (string, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
