package patterns

import "time"

// DefaultTimeout is the default timeout for HTTP requests
const DefaultTimeout = 3 * time.Second

// TicketSinkTimeout is a longer timeout for the ticket sink, whose REST
// API can be slow to respond
const TicketSinkTimeout = 10 * time.Second
