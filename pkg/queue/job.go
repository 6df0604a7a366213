package queue

import "context"

// Job consumes messages of one type from the queue.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type this job handles.
	Type() string

	// Handle processes one message payload. A returned error triggers the
	// queue's retry path.
	Handle(ctx context.Context, payload interface{}) error
}
