package mailer

import (
	"context"
	"encoding/json"

	"github.com/taskmate/apiserver/internal/mq"
)

// MQSender hands mail off to a message broker for an out-of-process mail
// worker to deliver. Publish failures surface to the caller; delivery
// failures are the worker's problem.
type MQSender struct {
	queue   *mq.MQ
	channel string
}

func NewMQSender(queue *mq.MQ, channel string) *MQSender {
	return &MQSender{
		queue:   queue,
		channel: channel,
	}
}

func (s *MQSender) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = s.queue.Publish(ctx, s.channel, data, map[string]string{
		"kind": "email",
	})
	return err
}
