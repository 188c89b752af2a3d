package models

import "time"

// CartItem represents one line of the live cart. Name is the unique key
// within a cart; the backend replaces the whole cart on every reply, the
// frontend never merges.
type CartItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// MenuItem represents one orderable item as served by the order backend
type MenuItem struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// Intent labels returned by the order backend's /process-order endpoint.
// Anything outside this set is treated as a plain message passthrough.
const (
	IntentAskMenu       = "ask_menu"
	IntentViewCart      = "view_cart"
	IntentAddItem       = "add_item"
	IntentRemoveItem    = "remove_item"
	IntentClearCart     = "clear_cart"
	IntentFinalizeOrder = "finalize_order"
	IntentUnknown       = "unknown"
)

// ProcessOrderRequest is the body sent to POST /process-order
type ProcessOrderRequest struct {
	Message string `json:"message" binding:"required"`
}

// OrderReply is the structured reply from /process-order. The populated
// fields vary per intent: ask_menu carries Menu, cart-affecting intents
// carry Cart (preferred) or Items plus Total, finalize_order additionally
// carries OrderSummary. Message is always usable as display text.
type OrderReply struct {
	Message      string      `json:"message"`
	Intent       string      `json:"intent"`
	Items        []CartItem  `json:"items,omitempty"`
	Cart         []CartItem  `json:"cart,omitempty"`
	Total        float64     `json:"total"`
	Menu         []MenuItem  `json:"menu,omitempty"`
	OrderSummary interface{} `json:"order_summary,omitempty"`
}

// CartState is the reply of GET /cart
type CartState struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// MenuState is the reply of GET /menu
type MenuState struct {
	Menu []MenuItem `json:"menu"`
}

// HealthState is the reply of GET /health
type HealthState struct {
	Status string `json:"status"`
}

// OrderSnapshot is an immutable copy of cart and total captured at the
// moment an order is finalized. It is decoupled from the live cart: the
// session may keep chatting or clear the cart without touching a snapshot
// already handed to the confirmation view.
type OrderSnapshot struct {
	OrderNumber string     `json:"order_number"`
	Items       []CartItem `json:"items"`
	Total       float64    `json:"total"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Subtotal sums the line totals. Display fallback only; the authoritative
// total always comes from the order backend.
func (s OrderSnapshot) Subtotal() float64 {
	sum := 0.0
	for _, item := range s.Items {
		sum += item.Price * float64(item.Qty)
	}
	return sum
}
