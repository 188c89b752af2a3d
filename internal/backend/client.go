// Package backend is the HTTP client for the remote order service. It is
// the only place that knows the backend's wire format; callers get typed
// replies or errors carrying the server-provided text.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Sanket3212/LLM-food-order/internal/models"
	"github.com/Sanket3212/LLM-food-order/internal/patterns"
)

// Client talks to the order backend over HTTP/JSON. The mutating calls
// (process-order, cart clear) go through a circuit breaker; health and
// read calls go direct so a tripped breaker never masks recovery.
type Client struct {
	http    *resty.Client
	baseURL string
	breaker *patterns.CircuitBreakerWrapper
}

// New creates a backend client for the given base URL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0), // No automatic retries, failures surface to the transcript
		baseURL: baseURL,
		breaker: patterns.NewCircuitBreaker("OrderBackend", "chat-frontend"),
	}
}

// Health probes GET /health and reports whether the backend declares
// itself healthy
func (c *Client) Health(ctx context.Context) (bool, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		Get(c.baseURL + "/health")
	if err != nil {
		return false, fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("order backend returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var health models.HealthState
	if err := json.Unmarshal(resp.Body(), &health); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return health.Status == "healthy", nil
}

// Menu fetches GET /menu
func (c *Client) Menu(ctx context.Context) ([]models.MenuItem, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		Get(c.baseURL + "/menu")
	if err != nil {
		return nil, fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("order backend returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var menu models.MenuState
	if err := json.Unmarshal(resp.Body(), &menu); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return menu.Menu, nil
}

// Cart fetches GET /cart
func (c *Client) Cart(ctx context.Context) (*models.CartState, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		Get(c.baseURL + "/cart")
	if err != nil {
		return nil, fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("order backend returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var cart models.CartState
	if err := json.Unmarshal(resp.Body(), &cart); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &cart, nil
}

// ProcessOrder posts a user message to POST /process-order and returns the
// structured reply
func (c *Client) ProcessOrder(ctx context.Context, message string) (*models.OrderReply, error) {
	result, cbErr := c.breaker.Execute(func() (interface{}, error) {
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetBody(models.ProcessOrderRequest{Message: message}).
			Post(c.baseURL + "/process-order")

		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}

		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("order backend returned status %d: %s", resp.StatusCode(), resp.String())
		}

		var reply models.OrderReply
		if err := json.Unmarshal(resp.Body(), &reply); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		return &reply, nil
	})
	if cbErr != nil {
		return nil, patterns.FormatError("OrderBackend", cbErr)
	}

	return result.(*models.OrderReply), nil
}

// ClearCart posts to POST /cart/clear
func (c *Client) ClearCart(ctx context.Context) error {
	_, cbErr := c.breaker.Execute(func() (interface{}, error) {
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			Post(c.baseURL + "/cart/clear")

		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}

		if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= 300 {
			return nil, fmt.Errorf("order backend returned status %d: %s", resp.StatusCode(), resp.String())
		}

		return nil, nil
	})
	if cbErr != nil {
		return patterns.FormatError("OrderBackend", cbErr)
	}
	return nil
}

// BreakerState exposes the circuit breaker state for diagnostics
func (c *Client) BreakerState() string {
	return c.breaker.GetState()
}
