// file: service/session_janitor_test.go

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionJanitor_Sweep(t *testing.T) {
	t.Run("purges expired records", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("DeleteExpired").Return(int64(3), nil).Once()

		janitor := NewSessionJanitor(tokenRepo, time.Minute)
		janitor.Sweep()

		tokenRepo.AssertExpectations(t)
	})

	t.Run("store failure is logged, not fatal", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("DeleteExpired").Return(int64(0), errors.New("connection lost")).Once()

		janitor := NewSessionJanitor(tokenRepo, time.Minute)
		janitor.Sweep()

		tokenRepo.AssertExpectations(t)
	})
}

func TestSessionJanitor_RunSweepsUntilCancelled(t *testing.T) {
	tokenRepo := new(mockTokenRepo)
	tokenRepo.On("DeleteExpired").Return(int64(0), nil)

	janitor := NewSessionJanitor(tokenRepo, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancellation")
	}

	tokenRepo.AssertCalled(t, "DeleteExpired")
	assert.True(t, len(tokenRepo.Calls) >= 1)
}
