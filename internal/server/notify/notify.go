// Package notify delivers the SMS side effect of new messages. Jobs go
// through a bounded in-process Dispatcher that retries with backoff and
// archives what it could not deliver; the Sender behind it is either the
// SMS provider itself or a RabbitMQ queue drained by the notifier process.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job is a single "you've got a message" SMS.
type Job struct {
	ID           string    `json:"id"`
	FromUsername string    `json:"from_username"`
	MessageID    int64     `json:"message_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewJob builds a job for a message sent by fromUsername.
func NewJob(fromUsername string, messageID int64) Job {
	return Job{
		ID:           uuid.NewString(),
		FromUsername: fromUsername,
		MessageID:    messageID,
		CreatedAt:    time.Now().UTC(),
	}
}

// Body is the SMS text.
func (j Job) Body() string {
	return fmt.Sprintf("You’ve received a message.ly from %s!", j.FromUsername)
}

// Sender hands a job to the next hop (SMS provider or broker).
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// DeadLetter archives jobs that could not be delivered.
type DeadLetter interface {
	Store(ctx context.Context, job Job, cause error) error
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the dispatcher gives up without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
