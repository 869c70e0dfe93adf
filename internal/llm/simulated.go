package llm

import (
	"context"
	"fmt"
	"time"
)

// SimulatedResponder stands in for the assistant backend: it waits a fixed
// delay and echoes the content inside a canned reply.
type SimulatedResponder struct {
	delay time.Duration
}

// NewSimulatedResponder creates a simulated responder
func NewSimulatedResponder(delay time.Duration) *SimulatedResponder {
	return &SimulatedResponder{delay: delay}
}

func (s *SimulatedResponder) Name() string {
	return "simulated"
}

func (s *SimulatedResponder) IsConfigured() bool {
	return true
}

func (s *SimulatedResponder) Reply(ctx context.Context, content string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Sprintf(SimulatedReplyFormat, content), nil
}
