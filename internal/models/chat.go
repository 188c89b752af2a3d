package models

import "time"

// Sender identifies who produced a chat message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// ChatMessage is a single entry in the conversation transcript.
// Messages are append-only: once added they are never mutated.
type ChatMessage struct {
	Sender    Sender      `json:"sender"`
	Text      string      `json:"text"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChatView is the controller state returned to the presentation layer
// after every operation
type ChatView struct {
	Transcript     []ChatMessage `json:"transcript"`
	Cart           []CartItem    `json:"cart"`
	Total          float64       `json:"total"`
	Connected      bool          `json:"connected"`
	Busy           bool          `json:"busy"`
	OrderConfirmed bool          `json:"order_confirmed"`
	OrderNumber    string        `json:"order_number,omitempty"`
}
