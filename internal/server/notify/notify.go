// Package notify implements fire-and-forget mail notifications: the
// request path enqueues a message onto a Redis list and an out-of-process
// worker delivers it. Delivery results are never surfaced to the caller.
package notify

import "context"

// Message is the unit queued for delivery.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Dispatcher enqueues a message for asynchronous delivery. Implementations
// must not block on delivery and must not propagate delivery failures.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message)
}

// Sender performs the actual delivery; the worker drives it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NoopDispatcher drops every message. Used when no queue is configured.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(ctx context.Context, msg Message) {}
