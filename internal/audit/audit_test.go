package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlift/pkg/domain"
)

func TestPublisherStampsTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)
	userID := domain.NewUserID()

	require.NoError(t, publisher.Emit(context.Background(), Event{
		UserID: userID,
		Action: ActionUserPromoted,
	}))

	events, err := publisher.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestQueueHandsOffToWorker(t *testing.T) {
	store := NewInMemoryStore()
	queue := NewQueue(store, 8)
	worker := NewWorker(store, queue.Inbox())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	userID := domain.NewUserID()
	publisher := NewPublisher(queue)
	require.NoError(t, publisher.Emit(context.Background(), Event{
		UserID:   userID,
		Action:   ActionDecision,
		Decision: "verified",
	}))

	require.Eventually(t, func() bool {
		events, err := store.ListByUser(context.Background(), userID)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestQueueDropsWhenFull(t *testing.T) {
	queue := NewQueue(NewInMemoryStore(), 1)

	require.NoError(t, queue.Append(context.Background(), Event{Action: ActionDecision}))
	err := queue.Append(context.Background(), Event{Action: ActionDecision})
	assert.ErrorIs(t, err, ErrQueueFull)
}
