package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EscalationQueue = "escalation_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

var ErrQueueClosed = errors.New("queue is closed")

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// EscalationEvent is emitted when a parent asks to be handed to a person.
type EscalationEvent struct {
	Id        uuid.UUID `json:"id"`
	SessionID string    `json:"sessionId"`
	Parent    string    `json:"parent"`
	Child     string    `json:"child"`
	Message   string    `json:"message"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishEscalation(ctx context.Context, event EscalationEvent) error

	Close()
}

type Reciever interface {
	Tasks() <-chan Task

	Close()
}
