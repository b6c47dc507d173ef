// Package agents contains the contract for the conversational agents a voice
// segment can be forwarded to, an HTTP implementation of it, and a registry
// that resolves agents by name.
package agents

import (
	"context"
	"fmt"
)

// Client sends a user utterance to a conversational agent and returns its
// reply.
type Client interface {
	SendText(ctx context.Context, text string) (Reply, error)
}

// Reply is the agent's answer to a single utterance.
type Reply struct {
	Text string `json:"text"`
}

// ClientFunc adapts a function to the [Client] interface.
type ClientFunc func(ctx context.Context, text string) (Reply, error)

func (f ClientFunc) SendText(ctx context.Context, text string) (Reply, error) {
	return f(ctx, text)
}

// StatusError is returned when an agent answers with a non-2xx status.
type StatusError struct {
	Agent      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent %s responded with status %d", e.Agent, e.StatusCode)
	}
	return fmt.Sprintf("agent %s responded with status %d: %s", e.Agent, e.StatusCode, e.Body)
}
