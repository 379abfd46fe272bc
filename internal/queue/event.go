// Package queue defines the user lifecycle events exchanged over RabbitMQ,
// the publisher used by the services and the consumer that records them.
package queue

import "time"

// QueueName is the durable queue carrying user lifecycle events.
const QueueName = "user.events"

// Event types.
const (
    UserRegistered = "user.registered"
    UserUpdated    = "user.updated"
    UserDeleted    = "user.deleted"
)

// UserEvent is published after a user mutation commits. It carries enough
// for downstream consumers to log or notify without querying the store;
// credentials are never included.
type UserEvent struct {
    Type       string    `json:"type"`
    UserID     uint64    `json:"user_id"`
    Email      string    `json:"email"`
    NickName   string    `json:"nick_name"`
    OccurredAt time.Time `json:"occurred_at"`
}
