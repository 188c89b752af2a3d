// Package orderbackend is a local development stand-in for the hosted
// order backend. It answers the same five endpoints with naive keyword
// intent matching over a fixed menu, enough to exercise the chat frontend
// end to end.
package orderbackend

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Sanket3212/LLM-food-order/internal/models"
)

// DefaultMenu is the fixed development menu
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Chicken Sandwich", Price: 8.50, Description: "Grilled chicken with lettuce and mayo", Aliases: []string{"chicken", "sandwich"}},
		{Name: "Veggie Burger", Price: 7.00, Description: "Plant-based patty with all the fixings", Aliases: []string{"veggie", "burger"}},
		{Name: "Margherita Pizza", Price: 11.00, Description: "Tomato, mozzarella and basil", Aliases: []string{"pizza", "margherita"}},
		{Name: "Caesar Salad", Price: 6.50, Description: "Romaine, parmesan and croutons", Aliases: []string{"salad", "caesar"}},
		{Name: "French Fries", Price: 3.50, Description: "Crispy golden fries", Aliases: []string{"fries", "chips"}},
		{Name: "Iced Tea", Price: 2.50, Description: "Freshly brewed, lightly sweetened", Aliases: []string{"tea", "drink"}},
	}
}

// Service holds the single shared development cart. One cart for the
// whole process mirrors the hosted backend's per-deployment cart.
type Service struct {
	menu []models.MenuItem

	mutex sync.RWMutex
	cart  []models.CartItem
}

// NewService creates a stand-in service over the given menu
func NewService(menu []models.MenuItem) *Service {
	return &Service{menu: menu}
}

// Menu returns the menu
func (s *Service) Menu() []models.MenuItem {
	return append([]models.MenuItem(nil), s.menu...)
}

// Cart returns the current cart and total
func (s *Service) Cart() models.CartState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return models.CartState{
		Items: append([]models.CartItem(nil), s.cart...),
		Total: s.totalLocked(),
	}
}

// ClearCart empties the cart
func (s *Service) ClearCart() {
	s.mutex.Lock()
	s.cart = nil
	s.mutex.Unlock()
}

// ProcessMessage classifies one user message by keyword and applies its
// effect. No natural-language parsing happens here: substring and quantity
// matching only.
func (s *Service) ProcessMessage(message string) models.OrderReply {
	text := strings.ToLower(strings.TrimSpace(message))

	switch {
	case strings.Contains(text, "menu"):
		return models.OrderReply{
			Intent:  models.IntentAskMenu,
			Message: "Here's our menu!",
			Menu:    s.Menu(),
		}

	case strings.Contains(text, "clear") || strings.Contains(text, "empty my cart"):
		s.ClearCart()
		return models.OrderReply{
			Intent:  models.IntentClearCart,
			Message: "Your cart has been cleared.",
		}

	case strings.Contains(text, "finalize") || strings.Contains(text, "confirm") ||
		strings.Contains(text, "checkout") || strings.Contains(text, "place my order"):
		return s.finalize()

	case strings.Contains(text, "cart"):
		state := s.Cart()
		msg := "Here's your cart!"
		if len(state.Items) == 0 {
			msg = "Your cart is empty."
		}
		return models.OrderReply{
			Intent:  models.IntentViewCart,
			Message: msg,
			Cart:    state.Items,
			Total:   state.Total,
		}

	case strings.Contains(text, "remove") || strings.Contains(text, "delete"):
		return s.removeItem(text)

	default:
		return s.addItem(text)
	}
}

func (s *Service) finalize() models.OrderReply {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.cart) == 0 {
		return models.OrderReply{
			Intent:  models.IntentFinalizeOrder,
			Message: "Your cart is empty. Add something before finalizing!",
		}
	}

	items := append([]models.CartItem(nil), s.cart...)
	total := s.totalLocked()
	return models.OrderReply{
		Intent:  models.IntentFinalizeOrder,
		Message: "Your order has been placed.",
		Cart:    items,
		Total:   total,
		OrderSummary: map[string]interface{}{
			"items": items,
			"total": total,
		},
	}
}

func (s *Service) addItem(text string) models.OrderReply {
	item, ok := s.matchMenuItem(text)
	if !ok {
		return models.OrderReply{
			Intent:  models.IntentUnknown,
			Message: "I'm not sure what you meant. Type 'menu' to see our options or name an item to add it.",
		}
	}

	qty := parseQuantity(text)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	found := false
	for i := range s.cart {
		if s.cart[i].Name == item.Name {
			s.cart[i].Qty += qty
			found = true
			break
		}
	}
	if !found {
		s.cart = append(s.cart, models.CartItem{Name: item.Name, Price: item.Price, Qty: qty})
	}

	return models.OrderReply{
		Intent:  models.IntentAddItem,
		Message: fmt.Sprintf("Added %d %s", qty, item.Name),
		Cart:    append([]models.CartItem(nil), s.cart...),
		Total:   s.totalLocked(),
	}
}

func (s *Service) removeItem(text string) models.OrderReply {
	item, ok := s.matchMenuItem(text)
	if !ok {
		return models.OrderReply{
			Intent:  models.IntentUnknown,
			Message: "I couldn't find that item in your cart.",
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.cart {
		if s.cart[i].Name == item.Name {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return models.OrderReply{
				Intent:  models.IntentRemoveItem,
				Message: fmt.Sprintf("Removed %s from your cart.", item.Name),
				Cart:    append([]models.CartItem(nil), s.cart...),
				Total:   s.totalLocked(),
			}
		}
	}

	return models.OrderReply{
		Intent:  models.IntentRemoveItem,
		Message: fmt.Sprintf("%s is not in your cart.", item.Name),
		Cart:    append([]models.CartItem(nil), s.cart...),
		Total:   s.totalLocked(),
	}
}

func (s *Service) matchMenuItem(text string) (models.MenuItem, bool) {
	for _, item := range s.menu {
		if strings.Contains(text, strings.ToLower(item.Name)) {
			return item, true
		}
	}
	for _, item := range s.menu {
		for _, alias := range item.Aliases {
			if strings.Contains(text, alias) {
				return item, true
			}
		}
	}
	return models.MenuItem{}, false
}

// parseQuantity picks the first standalone number in the message,
// defaulting to 1
func parseQuantity(text string) int {
	for _, field := range strings.Fields(text) {
		if n, err := strconv.Atoi(field); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// totalLocked sums the cart. Caller holds at least a read lock.
func (s *Service) totalLocked() float64 {
	total := 0.0
	for _, item := range s.cart {
		total += item.Price * float64(item.Qty)
	}
	return total
}
