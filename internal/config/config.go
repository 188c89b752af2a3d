package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the chat-frontend runtime configuration, loaded from
// CHAT_-prefixed environment variables.
type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8081"`

	// Ticket sink (MantisBT). Leaving URL or API key empty disables
	// ticket creation; orders still confirm.
	MantisURL       string `envconfig:"MANTIS_URL"`
	MantisAPIKey    string `envconfig:"MANTIS_API_KEY"`
	MantisProjectID int    `envconfig:"MANTIS_PROJECT_ID" default:"1"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"3s"`
	TicketDelay    time.Duration `envconfig:"TICKET_DELAY" default:"1500ms"`
	TicketBulkhead int           `envconfig:"TICKET_BULKHEAD" default:"4"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"30m"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("chat", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
