package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventlift/internal/registration"
	"eventlift/internal/registration/store"
	"eventlift/pkg/domain"
	"eventlift/pkg/platform/sentinel"
)

func TestReaperRemovesExpiredRecords(t *testing.T) {
	pending := store.NewInMemory()
	ctx := context.Background()

	stale := &registration.PendingRegistration{
		ID:        domain.NewPendingID(),
		Email:     "stale@example.com",
		Role:      domain.RoleClubAdmin,
		CreatedAt: time.Now().Add(-20 * time.Minute),
		ExpiresAt: time.Now().Add(-10 * time.Minute),
	}
	fresh := &registration.PendingRegistration{
		ID:        domain.NewPendingID(),
		Email:     "fresh@example.com",
		Role:      domain.RoleClubAdmin,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, pending.Replace(ctx, stale))
	require.NoError(t, pending.Replace(ctx, fresh))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewReaper(pending, 10*time.Millisecond, slog.Default()).Run(runCtx)
	}()

	require.Eventually(t, func() bool {
		_, err := pending.FindByEmail(ctx, "stale@example.com")
		return err != nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	_, err := pending.FindByEmail(ctx, "stale@example.com")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = pending.FindByEmail(ctx, "fresh@example.com")
	require.NoError(t, err)
}
