package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"causemap/pkg/lifecycle"
)

func TestCoordinator(t *testing.T) {
	t.Run("startup hooks complete before ready", func(t *testing.T) {
		lc := lifecycle.New()

		var ran atomic.Int32
		lc.OnStartup(func() { ran.Add(1) })
		lc.OnStartup(func() { ran.Add(1) })

		if lc.Ready() {
			t.Error("Ready() should be false before WaitForStartup")
		}

		lc.WaitForStartup()

		if ran.Load() != 2 {
			t.Errorf("startup hooks ran = %d, want 2", ran.Load())
		}
		if !lc.Ready() {
			t.Error("Ready() should be true after WaitForStartup")
		}
	})

	t.Run("shutdown cancels context and waits for hooks", func(t *testing.T) {
		lc := lifecycle.New()

		var cleaned atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			cleaned.Store(true)
		})

		if err := lc.Shutdown(time.Second); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
		if !cleaned.Load() {
			t.Error("shutdown hook did not run")
		}
	})

	t.Run("shutdown times out on stuck hook", func(t *testing.T) {
		lc := lifecycle.New()

		block := make(chan struct{})
		lc.OnShutdown(func() { <-block })
		defer close(block)

		if err := lc.Shutdown(10 * time.Millisecond); err == nil {
			t.Error("Shutdown() expected timeout error")
		}
	})
}
