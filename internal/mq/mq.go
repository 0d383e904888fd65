// Package mq is the broker layer behind asynchronous mail dispatch. The API
// server publishes outbound mail onto a named channel and a separate mail
// worker process consumes it, so a slow or down SMTP relay never blocks a
// password-reset request. Two brokers are supported: RabbitMQ and Google
// Cloud Pub/Sub.
package mq

import (
	"context"
	"errors"
	"strings"

	"github.com/taskmate/apiserver/config"
)

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a delivered message. Returning an error nacks the
// message for redelivery.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker operations the app relies on.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New wraps the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Connect picks the broker from config: RabbitMQ when a URL is set,
// otherwise Pub/Sub when a project id is set.
func Connect(ctx context.Context, cfg config.Config) (*MQ, error) {
	switch {
	case strings.TrimSpace(cfg.RabbitMQ.URL) != "":
		backend, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case strings.TrimSpace(cfg.PubSub.ProjectID) != "":
		backend, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, errors.New("mq: neither RABBITMQ_URL nor PUBSUB_PROJECT_ID is configured")
	}
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes messages from the named channel until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
