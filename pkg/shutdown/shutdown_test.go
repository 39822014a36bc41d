package shutdown

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGraceful(t *testing.T) {
	t.Run("stops in time", func(t *testing.T) {
		var forced atomic.Bool
		ok := Graceful(time.Second, func() {}, func() { forced.Store(true) })
		if !ok || forced.Load() {
			t.Fatalf("expected graceful stop, got ok=%v forced=%v", ok, forced.Load())
		}
	})

	t.Run("forces on timeout", func(t *testing.T) {
		release := make(chan struct{})
		var forced atomic.Bool
		ok := Graceful(10*time.Millisecond, func() { <-release }, func() {
			forced.Store(true)
			close(release)
		})
		if ok || !forced.Load() {
			t.Fatalf("expected forced stop, got ok=%v forced=%v", ok, forced.Load())
		}
	})
}
