package chat

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Sanket3212/LLM-food-order/internal/models"
)

// NewOrderNumber generates a display-only order identifier. Not globally
// unique and never validated server-side; it only correlates the
// confirmation message with the ticket.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}

// FormatMenuListing renders the menu as bullet lines for the transcript
func FormatMenuListing(menu []models.MenuItem) string {
	lines := make([]string, 0, len(menu))
	for _, item := range menu {
		lines = append(lines, fmt.Sprintf("• %s - $%.2f - %s", item.Name, item.Price, item.Description))
	}
	return strings.Join(lines, "\n")
}

// FormatCartListing renders cart contents as bullet lines for the transcript
func FormatCartListing(items []models.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("• %dx %s - $%.2f", item.Qty, item.Name, item.Price))
	}
	return strings.Join(lines, "\n")
}

// FormatTicketListing renders the order listing that goes into the ticket
// description, one line per item with the computed line total
func FormatTicketListing(items []models.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("• %dx %s - $%.2f each = $%.2f",
			item.Qty, item.Name, item.Price, float64(item.Qty)*item.Price))
	}
	return strings.Join(lines, "\n")
}
