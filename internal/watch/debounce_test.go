package watch

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(50*time.Millisecond, time.Second, func() { fires.Add(1) })
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fires.Load() == 1 },
		time.Second, 10*time.Millisecond)

	// Quiet after the fire: no further fires.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), fires.Load())
}

func TestDebouncerMaxDelayBoundsPostponement(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(60*time.Millisecond, 200*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	// Keep triggering more often than the quiet window; the max delay must
	// force a fire anyway.
	start := time.Now()
	stop := make(chan struct{})
	go func() {
		defer close(stop)
		for time.Since(start) < 400*time.Millisecond {
			d.Trigger()
			time.Sleep(20 * time.Millisecond)
		}
	}()

	require.Eventually(t, func() bool { return fired.Load() >= 1 },
		300*time.Millisecond, 10*time.Millisecond)
	<-stop
}

func TestDebouncerStopCancelsPendingFire(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(50*time.Millisecond, time.Second, func() { fires.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(120 * time.Millisecond)
	require.Equal(t, int32(0), fires.Load())
}

func TestDebouncerSeparateBursts(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(30*time.Millisecond, 500*time.Millisecond, func() { fires.Add(1) })
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return fires.Load() == 1 },
		500*time.Millisecond, 5*time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return fires.Load() == 2 },
		500*time.Millisecond, 5*time.Millisecond)
}
