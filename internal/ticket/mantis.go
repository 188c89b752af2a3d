// Package ticket files finalized orders as MantisBT issues for human
// follow-up. Ticket creation is best-effort: callers treat every error as
// non-fatal.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/metrics"
	"github.com/Sanket3212/LLM-food-order/internal/models"
	"github.com/Sanket3212/LLM-food-order/internal/patterns"
)

// ErrNotConfigured is returned when the Mantis URL or API key is missing
var ErrNotConfigured = errors.New("ticket sink is not configured")

// Config holds the MantisBT connection settings
type Config struct {
	URL       string
	APIKey    string
	ProjectID int
}

// Client creates MantisBT issues over its REST API. A bulkhead caps the
// number of concurrent sink calls so a slow Mantis instance cannot pile up
// goroutines from fire-and-forget ticket tasks.
type Client struct {
	http     *resty.Client
	cfg      Config
	bulkhead *patterns.Bulkhead
}

// NewClient creates a ticket sink client
func NewClient(cfg Config, bulkheadSize int) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(patterns.TicketSinkTimeout).
			SetRetryCount(0),
		cfg:      cfg,
		bulkhead: patterns.NewBulkhead(bulkheadSize, "ticket-sink", "chat-frontend"),
	}
}

type issuePayload struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Category    nameRef    `json:"category"`
	Project     projectRef `json:"project"`
	Tags        []nameRef  `json:"tags"`
}

type nameRef struct {
	Name string `json:"name"`
}

type projectRef struct {
	ID int `json:"id"`
}

type issueReply struct {
	Issue struct {
		ID int `json:"id"`
	} `json:"issue"`
	Message string `json:"message"`
}

// CreateTicket files one issue for a finalized order and returns the issue
// ID. The request's Items field is the pre-formatted order listing.
func (c *Client) CreateTicket(ctx context.Context, order models.TicketRequest) (int, error) {
	if c.cfg.URL == "" || c.cfg.APIKey == "" {
		metrics.TicketCreationTotal.WithLabelValues("skipped").Inc()
		return 0, ErrNotConfigured
	}

	var issueID int
	err := c.bulkhead.Execute(func() error {
		payload := issuePayload{
			Summary:     fmt.Sprintf("Food Order - %s", order.OrderNumber),
			Description: buildDescription(order),
			Category:    nameRef{Name: "General"},
			Project:     projectRef{ID: c.cfg.ProjectID},
			Tags: []nameRef{
				{Name: "order"},
				{Name: "food"},
				{Name: fmt.Sprintf("total-%.2f", order.Total)},
			},
		}

		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Authorization", c.cfg.APIKey).
			SetBody(payload).
			Post(c.cfg.URL + "/api/rest/issues")

		if httpErr != nil {
			return fmt.Errorf("HTTP error: %w", httpErr)
		}

		var reply issueReply
		if err := json.Unmarshal(resp.Body(), &reply); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		if resp.StatusCode() >= 300 || reply.Issue.ID == 0 {
			msg := reply.Message
			if msg == "" {
				msg = "Failed to create ticket"
			}
			return fmt.Errorf("mantis returned status %d: %s", resp.StatusCode(), msg)
		}

		issueID = reply.Issue.ID
		return nil
	})
	if err != nil {
		metrics.TicketCreationTotal.WithLabelValues("failed").Inc()
		return 0, err
	}

	metrics.TicketCreationTotal.WithLabelValues("created").Inc()
	log.WithFields(log.Fields{
		"order_number": order.OrderNumber,
		"issue_id":     issueID,
	}).Info("Mantis ticket created")

	return issueID, nil
}

func buildDescription(order models.TicketRequest) string {
	orderDate := order.Timestamp
	if t, err := time.Parse(time.RFC3339, order.Timestamp); err == nil {
		orderDate = t.Format("1/2/2006, 3:04:05 PM")
	}

	return fmt.Sprintf("Order Details:\n%s\n\nTotal Amount: %.2f\nOrder Date: %s\nCustomer: Walk-in Customer",
		order.Items, order.Total, orderDate)
}
