package audit

import (
	"context"
	"errors"

	"eventlift/pkg/domain"
)

// ErrQueueFull reports a dropped event. Callers log it; they never fail the
// request over it.
var ErrQueueFull = errors.New("audit queue full")

// Queue is a Store front that decouples emitters from persistence: Append
// hands the event to a Worker over a bounded channel, reads go straight to
// the backing store. A full inbox drops the event rather than blocking the
// request path; audit is best-effort here.
type Queue struct {
	backing Store
	inbox   chan Event
}

func NewQueue(backing Store, size int) *Queue {
	return &Queue{backing: backing, inbox: make(chan Event, size)}
}

// Inbox is the channel a Worker drains.
func (q *Queue) Inbox() <-chan Event {
	return q.inbox
}

func (q *Queue) Append(_ context.Context, event Event) error {
	select {
	case q.inbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) ListByUser(ctx context.Context, userID domain.UserID) ([]Event, error) {
	return q.backing.ListByUser(ctx, userID)
}
