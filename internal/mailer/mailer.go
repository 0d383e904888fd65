// Package mailer hands outbound mail to a delivery backend. The core's
// obligation ends at Send: transport retries and bounces are the backend's
// concern.
package mailer

import "context"

// Message is a plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a message. Implementations must not be given an open
// database transaction to hold; callers send only after their own writes
// have committed.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
