// Package web exposes the conversation controller over HTTP: a JSON API
// for the chat view plus a server-rendered page. Handlers translate
// controller preconditions into status codes; remote failures never reach
// this layer as errors, they arrive as transcript entries.
package web

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/chat"
	"github.com/Sanket3212/LLM-food-order/internal/models"
	"github.com/Sanket3212/LLM-food-order/internal/ticket"
)

// ErrorResponse is the error envelope returned by the JSON API
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Handler wires the session manager and the external clients into gin
type Handler struct {
	sessions *chat.Manager
	backend  chat.OrderBackend
	sink     chat.TicketSink
}

// NewHandler creates the HTTP handler set
func NewHandler(sessions *chat.Manager, backend chat.OrderBackend, sink chat.TicketSink) *Handler {
	return &Handler{
		sessions: sessions,
		backend:  backend,
		sink:     sink,
	}
}

// Register mounts all routes on the router
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/", h.Page)

	router.GET("/api/chat", h.GetChat)
	router.POST("/api/chat", h.PostChat)
	router.GET("/api/menu", h.GetMenu)
	router.GET("/api/cart", h.GetCart)
	router.POST("/api/cart/clear", h.ClearCart)
	router.POST("/api/connectivity/check", h.CheckConnectivity)
	router.GET("/api/order/confirmation", h.GetConfirmation)
	router.POST("/api/order/new", h.StartNewOrder)
	router.POST("/api/create-ticket", h.CreateTicket)

	// Form targets for the server-rendered page
	router.POST("/chat/send", h.FormSend)
	router.POST("/cart/clear", h.FormClearCart)
	router.POST("/order/new", h.FormNewOrder)
}

func (h *Handler) session(c *gin.Context) *chat.Session {
	return h.sessions.GetOrCreate(c.Request.Context(), sessionID(c))
}

// GetChat returns the full controller view for the current session
func (h *Handler) GetChat(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).View())
}

type chatRequest struct {
	Message string `json:"message" form:"message"`
}

// PostChat submits one user message and returns the refreshed view
func (h *Handler) PostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error(), Code: "invalid_request"})
		return
	}

	s := h.session(c)
	err := s.Submit(c.Request.Context(), req.Message)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, s.View())
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message is required", Code: "empty_message"})
	case errors.Is(err, chat.ErrOrderConfirmed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "order is already confirmed, start a new order first", Code: "order_confirmed"})
	case errors.Is(err, chat.ErrBusy):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "a request is already in flight", Code: "busy"})
	case errors.Is(err, chat.ErrBackendDown):
		c.JSON(http.StatusServiceUnavailable, s.View())
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal_error"})
	}
}

// GetMenu forwards the menu fetch straight to the backend
func (h *Handler) GetMenu(c *gin.Context) {
	menu, err := h.backend.Menu(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menu": menu})
}

// GetCart forwards the cart fetch
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.backend.Cart(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": cart.Items, "total": cart.Total})
}

// ClearCart resets the remote cart through the controller
func (h *Handler) ClearCart(c *gin.Context) {
	s := h.session(c)
	if err := s.ClearCart(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared successfully"})
}

// CheckConnectivity re-probes the backend health endpoint
func (h *Handler) CheckConnectivity(c *gin.Context) {
	connected := h.session(c).CheckConnectivity(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"connected": connected})
}

// ConfirmationView is the confirmation payload: the frozen snapshot plus a
// decorative delivery estimate. The estimate is cosmetic, not derived from
// any fulfillment system.
type ConfirmationView struct {
	Order             models.OrderSnapshot `json:"order"`
	Subtotal          float64              `json:"subtotal"`
	EstimatedMinutes  int                  `json:"estimated_minutes"`
	EstimatedDelivery time.Time            `json:"estimated_delivery"`
}

func newConfirmationView(snap models.OrderSnapshot) ConfirmationView {
	minutes := rand.Intn(20) + 15 // 15-35 minutes
	return ConfirmationView{
		Order:             snap,
		Subtotal:          snap.Subtotal(),
		EstimatedMinutes:  minutes,
		EstimatedDelivery: time.Now().Add(time.Duration(minutes) * time.Minute),
	}
}

// GetConfirmation serves the confirmed order snapshot
func (h *Handler) GetConfirmation(c *gin.Context) {
	snap, ok := h.session(c).Snapshot()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no confirmed order", Code: "not_found"})
		return
	}
	c.JSON(http.StatusOK, newConfirmationView(snap))
}

// StartNewOrder clears the confirmation state, keeping the transcript
func (h *Handler) StartNewOrder(c *gin.Context) {
	h.session(c).ResetForNewOrder()
	c.Status(http.StatusNoContent)
}

// CreateTicket is the forwarding endpoint to the ticket sink
func (h *Handler) CreateTicket(c *gin.Context) {
	var req models.TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	issueID, err := h.sink.CreateTicket(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ticket.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
			return
		}
		log.Error("Ticket forwarding failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.TicketResponse{IssueID: issueID})
}

// FormSend handles the page's message form and redirects back
func (h *Handler) FormSend(c *gin.Context) {
	var req chatRequest
	_ = c.ShouldBind(&req)

	// Precondition failures already leave their trace in the transcript
	// or are visible in the disabled form; the page just re-renders.
	_ = h.session(c).Submit(c.Request.Context(), req.Message)
	c.Redirect(http.StatusSeeOther, "/")
}

// FormClearCart handles the page's clear-cart button
func (h *Handler) FormClearCart(c *gin.Context) {
	_ = h.session(c).ClearCart(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// FormNewOrder handles the page's start-new-order button
func (h *Handler) FormNewOrder(c *gin.Context) {
	h.session(c).ResetForNewOrder()
	c.Redirect(http.StatusSeeOther, "/")
}
