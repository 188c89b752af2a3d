// Package chat owns the per-session conversation state: transcript, cart
// snapshot, running total, connectivity and order lifecycle. It drives the
// order backend and the ticket sink and converts every remote failure into
// a transcript entry instead of an error the rendering layer has to handle.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/metrics"
	"github.com/Sanket3212/LLM-food-order/internal/models"
	"github.com/Sanket3212/LLM-food-order/internal/patterns"
)

// WelcomeText opens every new conversation
const WelcomeText = "Welcome! What would you like to order today? Type 'menu' to see our options or just tell me what you'd like!"

// Precondition errors returned by Submit. Handled remote failures are not
// errors: they become system messages in the transcript.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrOrderConfirmed = errors.New("order is already confirmed")
	ErrBusy           = errors.New("a request is already in flight")
	ErrBackendDown    = errors.New("order backend is not available")
)

// OrderBackend is the remote order service surface the controller needs
type OrderBackend interface {
	Health(ctx context.Context) (bool, error)
	Menu(ctx context.Context) ([]models.MenuItem, error)
	Cart(ctx context.Context) (*models.CartState, error)
	ProcessOrder(ctx context.Context, message string) (*models.OrderReply, error)
	ClearCart(ctx context.Context) error
}

// TicketSink files a finalized order for record-keeping
type TicketSink interface {
	CreateTicket(ctx context.Context, order models.TicketRequest) (int, error)
}

// Session is the conversation controller for one browser session. All
// state transitions happen under the session mutex; the busy flag gates
// the submit path the way a disabled input does in the UI.
type Session struct {
	ID string

	backend     OrderBackend
	sink        TicketSink
	ticketDelay time.Duration

	mu             sync.Mutex
	transcript     []models.ChatMessage
	cart           []models.CartItem
	total          float64
	menu           []models.MenuItem
	connected      bool
	busy           bool
	orderConfirmed bool
	orderNumber    string
	snapshot       *models.OrderSnapshot
	lastActive     time.Time

	tickets sync.WaitGroup
}

// NewSession creates a session seeded with the welcome message
func NewSession(id string, backend OrderBackend, sink TicketSink, ticketDelay time.Duration) *Session {
	s := &Session{
		ID:          id,
		backend:     backend,
		sink:        sink,
		ticketDelay: ticketDelay,
		lastActive:  time.Now(),
	}
	s.append(models.SenderAssistant, WelcomeText, nil)
	return s
}

// Bootstrap runs the initial health probe and loads menu and cart, the way
// the chat view does on first mount. Menu failure is reported in the
// transcript; the initial cart fetch fails silently.
func (s *Session) Bootstrap(ctx context.Context) {
	s.CheckConnectivity(ctx)

	menu, err := s.backend.Menu(ctx)
	s.mu.Lock()
	if err != nil {
		s.appendLocked(models.SenderSystem, "Failed to load menu. Please check your connection.", nil)
	} else {
		s.menu = menu
	}
	s.mu.Unlock()

	cart, err := s.backend.Cart(ctx)
	if err != nil {
		log.WithFields(log.Fields{"session": s.ID}).Debug("Initial cart fetch failed: ", err)
		return
	}
	s.mu.Lock()
	s.cart = cloneItems(cart.Items)
	s.total = cart.Total
	s.mu.Unlock()
}

// Submit sends one user message through the order backend and reconciles
// the reply into transcript, cart and total.
//
// The user message is appended optimistically before the request goes out.
// A failed request leaves cart and total untouched and adds exactly one
// system message. A finalize_order reply confirms the order and captures
// the snapshot synchronously; the ticket sink is notified afterwards by a
// detached task whose outcome only adds a supplementary transcript entry.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.orderConfirmed {
		s.mu.Unlock()
		return ErrOrderConfirmed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if !s.connected {
		s.appendLocked(models.SenderSystem, "Backend is not available. Please try again later.", nil)
		s.mu.Unlock()
		return ErrBackendDown
	}
	s.appendLocked(models.SenderUser, text, nil)
	s.busy = true
	s.mu.Unlock()

	reply, err := s.backend.ProcessOrder(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		log.WithFields(log.Fields{"session": s.ID}).Error("Order processing failed: ", err)
		s.appendLocked(models.SenderSystem, "Failed to process order: "+err.Error(), nil)
		return nil
	}

	s.applyReplyLocked(reply)
	return nil
}

// applyReplyLocked reconciles one backend reply. Caller holds the mutex.
func (s *Session) applyReplyLocked(reply *models.OrderReply) {
	metrics.ChatIntentsTotal.WithLabelValues(intentLabel(reply.Intent)).Inc()

	// Authoritative cart replacement: `cart` wins over `items`
	if reply.Cart != nil {
		s.cart = cloneItems(reply.Cart)
		s.total = reply.Total
	} else if reply.Items != nil {
		s.cart = cloneItems(reply.Items)
		s.total = reply.Total
	}

	text := reply.Message
	if text == "" {
		text = "I've processed your request!"
	}

	switch reply.Intent {
	case models.IntentAskMenu:
		if len(reply.Menu) > 0 {
			s.menu = reply.Menu
			text += "\n\n" + FormatMenuListing(reply.Menu)
		}
	case models.IntentViewCart:
		if len(reply.Cart) > 0 {
			text += "\n\n" + FormatCartListing(reply.Cart)
		}
	case models.IntentFinalizeOrder:
		if reply.OrderSummary != nil {
			text = s.finalizeLocked(reply.Message)
		}
	}

	s.appendLocked(models.SenderAssistant, text, reply)
}

// finalizeLocked confirms the order: generates the order number, captures
// the snapshot from the just-synchronized cart and total, and queues the
// detached ticket task. Returns the confirmation text. Caller holds the
// mutex.
func (s *Session) finalizeLocked(backendMessage string) string {
	s.orderNumber = NewOrderNumber()
	s.orderConfirmed = true

	snap := models.OrderSnapshot{
		OrderNumber: s.orderNumber,
		Items:       cloneItems(s.cart),
		Total:       s.total,
		Timestamp:   time.Now(),
	}
	s.snapshot = &snap

	metrics.OrdersConfirmedTotal.Inc()
	metrics.OrderValue.Observe(snap.Total)

	log.WithFields(log.Fields{
		"session":      s.ID,
		"order_number": snap.OrderNumber,
		"total":        snap.Total,
	}).Info("Order confirmed")

	s.tickets.Add(1)
	go s.fileTicket(snap)

	return fmt.Sprintf("Order confirmed! %s\nOrder Number: %s", backendMessage, s.orderNumber)
}

// fileTicket is the fire-and-forget ticket task. It waits the configured
// delay, calls the sink, and logs the outcome as a system message. It
// never touches the confirmed order state.
func (s *Session) fileTicket(snap models.OrderSnapshot) {
	defer s.tickets.Done()

	time.Sleep(s.ticketDelay)

	ctx, cancel := context.WithTimeout(context.Background(), patterns.TicketSinkTimeout)
	defer cancel()

	issueID, err := s.sink.CreateTicket(ctx, models.TicketRequest{
		OrderNumber: snap.OrderNumber,
		Items:       FormatTicketListing(snap.Items),
		Total:       snap.Total,
		Timestamp:   snap.Timestamp.UTC().Format(time.RFC3339),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.WithFields(log.Fields{
			"session":      s.ID,
			"order_number": snap.OrderNumber,
		}).Warn("Ticket creation failed: ", err)
		s.appendLocked(models.SenderSystem, "Failed to create order ticket: "+err.Error(), nil)
		return
	}
	s.appendLocked(models.SenderSystem, fmt.Sprintf("Order ticket created successfully! Ticket ID: %d", issueID), nil)
}

// ClearCart asks the backend to reset the cart. On success the local cart
// and total are zeroed; on failure they are left untouched. Either way one
// system message records the outcome.
func (s *Session) ClearCart(ctx context.Context) error {
	err := s.backend.ClearCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.WithFields(log.Fields{"session": s.ID}).Error("Clear cart failed: ", err)
		s.appendLocked(models.SenderSystem, "Failed to clear cart.", nil)
		return err
	}

	s.cart = nil
	s.total = 0
	s.appendLocked(models.SenderSystem, "Cart cleared successfully!", nil)
	return nil
}

// CheckConnectivity probes the backend health endpoint and updates the
// connectivity flag. Advisory only: it gates Submit but nothing retries
// automatically.
func (s *Session) CheckConnectivity(ctx context.Context) bool {
	healthy, err := s.backend.Health(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.connected = false
		s.appendLocked(models.SenderSystem, "Warning: Unable to connect to backend. Some features may not work.", nil)
		return false
	}
	s.connected = healthy
	return healthy
}

// ResetForNewOrder clears the confirmed flag, the snapshot and the pending
// order number. Transcript and cart survive so the conversation can
// continue.
func (s *Session) ResetForNewOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderConfirmed = false
	s.orderNumber = ""
	s.snapshot = nil
}

// View returns a copy of the controller state for rendering
func (s *Session) View() models.ChatView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ChatView{
		Transcript:     append([]models.ChatMessage(nil), s.transcript...),
		Cart:           cloneItems(s.cart),
		Total:          s.total,
		Connected:      s.connected,
		Busy:           s.busy,
		OrderConfirmed: s.orderConfirmed,
		OrderNumber:    s.orderNumber,
	}
}

// Snapshot returns a copy of the confirmed order snapshot, if any
func (s *Session) Snapshot() (models.OrderSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return models.OrderSnapshot{}, false
	}
	snap := *s.snapshot
	snap.Items = cloneItems(snap.Items)
	return snap, true
}

// Menu returns the cached menu
func (s *Session) Menu() []models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MenuItem(nil), s.menu...)
}

// WaitTickets blocks until all detached ticket tasks have finished. Used
// on shutdown and by tests.
func (s *Session) WaitTickets() {
	s.tickets.Wait()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) append(sender models.Sender, text string, data interface{}) {
	s.mu.Lock()
	s.appendLocked(sender, text, data)
	s.mu.Unlock()
}

// appendLocked adds one transcript entry. Caller holds the mutex.
func (s *Session) appendLocked(sender models.Sender, text string, data interface{}) {
	s.transcript = append(s.transcript, models.ChatMessage{
		Sender:    sender,
		Text:      text,
		Data:      data,
		Timestamp: time.Now(),
	})
	metrics.ChatMessagesTotal.WithLabelValues(string(sender)).Inc()
}

func cloneItems(items []models.CartItem) []models.CartItem {
	if items == nil {
		return nil
	}
	return append([]models.CartItem(nil), items...)
}

func intentLabel(intent string) string {
	switch intent {
	case models.IntentAskMenu, models.IntentViewCart, models.IntentAddItem,
		models.IntentRemoveItem, models.IntentClearCart, models.IntentFinalizeOrder:
		return intent
	default:
		return models.IntentUnknown
	}
}
