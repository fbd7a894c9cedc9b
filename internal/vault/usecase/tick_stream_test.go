package usecase

import (
	"context"
	"testing"
	"time"
)

func TestStreamTicks(t *testing.T) {
	t.Run("ForwardsTickCounter", func(t *testing.T) {
		// Arrange
		env := defaultEnv(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := env.uc.StreamTicks(ctx)

		// Act
		env.sched.mu.Lock()
		env.sched.ticks = 7
		env.sched.mu.Unlock()
		env.sched.signals <- struct{}{}

		// Assert
		select {
		case got := <-out:
			if got != 7 {
				t.Fatalf("expected tick 7, got %d", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected a forwarded tick")
		}
	})

	t.Run("ClosesOnContextDone", func(t *testing.T) {
		// Arrange
		env := defaultEnv(t)
		ctx, cancel := context.WithCancel(context.Background())
		out := env.uc.StreamTicks(ctx)

		// Act
		cancel()

		// Assert
		select {
		case _, ok := <-out:
			if ok {
				t.Fatalf("expected closed channel")
			}
		case <-time.After(time.Second):
			t.Fatalf("expected channel to close")
		}
	})
}
