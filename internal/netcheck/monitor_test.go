package netcheck

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMonitor_StartsOnline(t *testing.T) {
	m := New(nil, time.Minute)
	if !m.Online() {
		t.Fatal("new monitor should assume online")
	}
}

func TestMonitor_OfflineThreshold(t *testing.T) {
	m := New(nil, time.Minute)

	m.ReportFailure()
	if !m.Online() {
		t.Fatal("one failure should not flip the verdict")
	}

	m.ReportFailure()
	if m.Online() {
		t.Fatal("two consecutive failures should flip offline")
	}
}

func TestMonitor_SuccessResetsFailures(t *testing.T) {
	m := New(nil, time.Minute)

	m.ReportFailure()
	m.ReportSuccess()
	m.ReportFailure()
	if !m.Online() {
		t.Fatal("failure count should reset on success; a single new failure must not flip offline")
	}
}

func TestMonitor_OnOnlineIsEdgeTriggered(t *testing.T) {
	m := New(nil, time.Minute)

	var fired int
	m.OnOnline(func() { fired++ })

	// Successes while already online are not transitions.
	m.ReportSuccess()
	m.ReportSuccess()
	if fired != 0 {
		t.Fatalf("fired = %d, want 0 while staying online", fired)
	}

	m.ReportFailure()
	m.ReportFailure()
	m.ReportSuccess()
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 on the offline-to-online edge", fired)
	}

	m.ReportSuccess()
	if fired != 1 {
		t.Fatalf("fired = %d, want no repeat without another outage", fired)
	}
}

func TestMonitor_ProbeLoopRecovers(t *testing.T) {
	var calls atomic.Int64
	var mu sync.Mutex
	probeErr := errors.New("unreachable")

	probe := func(ctx context.Context) error {
		calls.Add(1)
		mu.Lock()
		defer mu.Unlock()
		return probeErr
	}

	m := New(probe, 5*time.Millisecond)
	recovered := make(chan struct{}, 1)
	m.OnOnline(func() {
		select {
		case recovered <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	// Wait until the failing probes have flipped the verdict.
	deadline := time.Now().Add(2 * time.Second)
	for m.Online() {
		if time.Now().After(deadline) {
			t.Fatal("probe failures never flipped the monitor offline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Let the probe heal; the loop should notice and fire OnOnline.
	mu.Lock()
	probeErr = nil
	mu.Unlock()

	select {
	case <-recovered:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never reported recovery")
	}
	if !m.Online() {
		t.Fatal("monitor should be online after a successful probe")
	}
	if calls.Load() == 0 {
		t.Fatal("probe was never invoked")
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 15 * time.Second
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, base},
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{10, maxBackoff},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.failures, base); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}
