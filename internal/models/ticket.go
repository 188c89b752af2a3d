package models

// TicketRequest is the payload accepted by the ticket forwarding endpoint
// and handed to the ticket sink client. Items is a pre-formatted listing,
// one bullet line per cart entry.
type TicketRequest struct {
	OrderNumber string  `json:"orderNumber" binding:"required"`
	Items       string  `json:"items"`
	Total       float64 `json:"total"`
	Timestamp   string  `json:"timestamp"`
}

// TicketResponse is returned after a successful ticket creation
type TicketResponse struct {
	IssueID int `json:"issueId"`
}
