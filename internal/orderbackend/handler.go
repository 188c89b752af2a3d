package orderbackend

import (
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/metrics"
	"github.com/Sanket3212/LLM-food-order/internal/models"
)

// Handler exposes the stand-in service over the order backend's HTTP
// contract, plus chaos toggles for exercising the frontend's failure
// paths.
type Handler struct {
	service *Service

	chaosMutex    sync.RWMutex
	chaosEnabled  bool
	chaosSlowMode bool
}

// NewHandler creates the HTTP handler set for the stand-in backend
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts all routes on the router
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/menu", h.GetMenu)
	router.GET("/cart", h.GetCart)
	router.POST("/process-order", h.ProcessOrder)
	router.POST("/cart/clear", h.ClearCart)

	// Chaos engineering endpoints
	router.POST("/chaos/backend/enable", h.EnableChaos)
	router.POST("/chaos/backend/disable", h.DisableChaos)
	router.POST("/chaos/backend/slow", h.EnableSlowMode)
	router.POST("/chaos/backend/slow/disable", h.DisableSlowMode)
}

// Health reports the stand-in as healthy unless chaos failure mode is on
func (h *Handler) Health(c *gin.Context) {
	if h.getChaosEnabled() && rand.Float32() < 0.4 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GetMenu serves GET /menu
func (h *Handler) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, models.MenuState{Menu: h.service.Menu()})
}

// GetCart serves GET /cart
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Cart())
}

// ProcessOrder serves POST /process-order
func (h *Handler) ProcessOrder(c *gin.Context) {
	var req models.ProcessOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.simulateChaos(); err != nil {
		log.Warn("Chaos: Simulated backend failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Order backend temporarily unavailable"})
		return
	}

	reply := h.service.ProcessMessage(req.Message)

	log.WithFields(log.Fields{
		"intent": reply.Intent,
		"total":  reply.Total,
	}).Info("Processed order message")

	c.JSON(http.StatusOK, reply)
}

// ClearCart serves POST /cart/clear
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.simulateChaos(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Order backend temporarily unavailable"})
		return
	}
	h.service.ClearCart()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// EnableChaos turns on random request failures
func (h *Handler) EnableChaos(c *gin.Context) {
	h.setChaosEnabled(true)
	metrics.ChaosFailureRate.WithLabelValues("order-backend").Set(1)

	log.Info("Chaos mode ENABLED for order backend")
	c.JSON(http.StatusOK, gin.H{
		"message": "Chaos mode enabled",
		"info":    "40% of requests will fail randomly",
	})
}

// DisableChaos turns off all chaos modes
func (h *Handler) DisableChaos(c *gin.Context) {
	h.setChaosEnabled(false)
	h.setSlowMode(false)
	metrics.ChaosFailureRate.WithLabelValues("order-backend").Set(0)
	metrics.ChaosSlowMode.WithLabelValues("order-backend").Set(0)

	log.Info("Chaos mode DISABLED for order backend")
	c.JSON(http.StatusOK, gin.H{"message": "Chaos mode disabled"})
}

// EnableSlowMode adds multi-second delays to requests
func (h *Handler) EnableSlowMode(c *gin.Context) {
	h.setSlowMode(true)
	metrics.ChaosSlowMode.WithLabelValues("order-backend").Set(1)

	log.Info("Slow mode ENABLED for order backend")
	c.JSON(http.StatusOK, gin.H{
		"message": "Slow mode enabled",
		"info":    "Requests will have 5-10 second delays",
	})
}

// DisableSlowMode removes the artificial delays
func (h *Handler) DisableSlowMode(c *gin.Context) {
	h.setSlowMode(false)
	metrics.ChaosSlowMode.WithLabelValues("order-backend").Set(0)

	log.Info("Slow mode DISABLED for order backend")
	c.JSON(http.StatusOK, gin.H{"message": "Slow mode disabled"})
}

func (h *Handler) setChaosEnabled(enabled bool) {
	h.chaosMutex.Lock()
	defer h.chaosMutex.Unlock()
	h.chaosEnabled = enabled
}

func (h *Handler) getChaosEnabled() bool {
	h.chaosMutex.RLock()
	defer h.chaosMutex.RUnlock()
	return h.chaosEnabled
}

func (h *Handler) setSlowMode(enabled bool) {
	h.chaosMutex.Lock()
	defer h.chaosMutex.Unlock()
	h.chaosSlowMode = enabled
}

func (h *Handler) getSlowMode() bool {
	h.chaosMutex.RLock()
	defer h.chaosMutex.RUnlock()
	return h.chaosSlowMode
}

func (h *Handler) simulateChaos() error {
	if h.getSlowMode() {
		delay := time.Duration(5000+rand.Intn(5000)) * time.Millisecond
		log.WithField("delay_ms", delay.Milliseconds()).Debug("Chaos: Simulating slow response")
		time.Sleep(delay)
	}

	if h.getChaosEnabled() {
		// 40% failure rate
		if rand.Float32() < 0.4 {
			return errors.New("simulated backend failure")
		}
	}

	return nil
}
