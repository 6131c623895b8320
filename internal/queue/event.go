// Package queue publishes domain events to the message broker.
package queue

const (
	AdvisorRequestCreatedQueue   = "advisor.request.created"
	AdvisorRequestRespondedQueue = "advisor.request.responded"
)

// AdvisorRequestEvent is published when a request is created or answered.
// Consumers can notify the other party without querying the primary store.
type AdvisorRequestEvent struct {
	RequestID    string `json:"request_id"`
	UserID       string `json:"user_id"`
	AdvisorID    string `json:"advisor_id"`
	Status       string `json:"status"`
	AutoDeclined int64  `json:"auto_declined,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
