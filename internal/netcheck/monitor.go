// Package netcheck tracks whether the remote service is reachable and
// raises an edge-triggered signal when connectivity comes back.
package netcheck

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultProbeInterval = 15 * time.Second
	maxBackoff           = 2 * time.Minute

	// offlineThreshold is how many consecutive probe failures flip the
	// monitor offline. One blip should not send mutations to the queue.
	offlineThreshold = 2
)

// Probe checks reachability; any error counts as a failure.
type Probe func(ctx context.Context) error

// Monitor runs the probe on a cadence and keeps the current online/offline
// verdict. Safe for concurrent use.
type Monitor struct {
	probe    Probe
	interval time.Duration

	mu       sync.Mutex
	failures int
	online   bool
	onOnline []func()
}

// New creates a Monitor that starts out online; the first probes correct
// that quickly if the network is actually down.
func New(probe Probe, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		online:   true,
	}
}

// Online reports the current verdict.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnOnline registers a callback fired once per offline-to-online
// transition. Used to drain the offline queue.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// ReportFailure feeds an out-of-band failure observation (a mutation's
// remote call failing) into the verdict, so going offline between probes is
// noticed at the moment it matters.
func (m *Monitor) ReportFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
	if m.failures >= offlineThreshold {
		m.online = false
	}
}

// ReportSuccess feeds an out-of-band success observation.
func (m *Monitor) ReportSuccess() {
	m.recordSuccess()
}

// Start launches the probe loop. It returns immediately and stops when the
// context is cancelled. While offline the loop probes on a backed-off
// cadence so a long outage does not hammer the network.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		for {
			wait := m.interval
			m.mu.Lock()
			if m.failures > 0 {
				wait = calculateBackoff(m.failures-1, m.interval)
			}
			m.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := m.probe(pctx)
			cancel()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("connectivity probe failed: %v", err)
				m.ReportFailure()
				continue
			}
			m.recordSuccess()
		}
	}()
}

func (m *Monitor) recordSuccess() {
	m.mu.Lock()
	wasOffline := !m.online
	m.failures = 0
	m.online = true
	callbacks := make([]func(), len(m.onOnline))
	copy(callbacks, m.onOnline)
	m.mu.Unlock()

	if wasOffline {
		for _, fn := range callbacks {
			fn()
		}
	}
}

// calculateBackoff doubles the base interval per failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
