package llm

import "context"

// Canned texts used by the simulated round trip
const (
	SimulatedReplyFormat = "Received your message: %q. This is a simulated reply; the assistant backend is not connected yet."
	FailureReply         = "Sorry, something went wrong while sending your message. Please try again later."
)

// Responder produces the assistant side of a chat exchange
type Responder interface {
	// Name returns the responder identifier
	Name() string

	// IsConfigured reports whether the responder can serve replies
	IsConfigured() bool

	// Reply returns the assistant answer to content
	Reply(ctx context.Context, content string) (string, error)
}

// ResponderFactory creates a new responder instance
type ResponderFactory func() Responder
