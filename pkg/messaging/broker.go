package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels the engine publishes on. Consumers own actual delivery;
// the engine only announces.
const (
	ChannelAppointments = "appointments"
	ChannelReminders    = "reminders"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
