package engine

import (
	"sync"
	"time"
)

// defaultQuietWindow is how long after the last mutation attempt the pulse
// falls back to idle.
const defaultQuietWindow = 900 * time.Millisecond

// SyncState is the UI-facing sync indicator state.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncSyncing
)

func (s SyncState) String() string {
	if s == SyncSyncing {
		return "syncing"
	}
	return "idle"
}

// Pulse is the timer-debounced idle/syncing indicator. Every mutation
// attempt pulses it regardless of outcome; a quiet window with no new
// attempts returns it to idle. Purely cosmetic: nothing in the mutation
// path waits on it.
type Pulse struct {
	mu       sync.Mutex
	quiet    time.Duration
	state    SyncState
	timer    *time.Timer
	onChange func(SyncState)
}

// NewPulse creates a Pulse. A zero quiet window uses the default; onChange
// may be nil.
func NewPulse(quiet time.Duration, onChange func(SyncState)) *Pulse {
	if quiet <= 0 {
		quiet = defaultQuietWindow
	}
	return &Pulse{quiet: quiet, onChange: onChange}
}

// Pulse enters syncing and (re)starts the countdown back to idle.
func (p *Pulse) Pulse() {
	p.mu.Lock()
	changed := p.state != SyncSyncing
	p.state = SyncSyncing
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.quiet, p.settle)
	notify := p.onChange
	p.mu.Unlock()

	if changed && notify != nil {
		notify(SyncSyncing)
	}
}

// State returns the current indicator state.
func (p *Pulse) State() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stop cancels any pending countdown.
func (p *Pulse) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pulse) settle() {
	p.mu.Lock()
	changed := p.state != SyncIdle
	p.state = SyncIdle
	notify := p.onChange
	p.mu.Unlock()

	if changed && notify != nil {
		notify(SyncIdle)
	}
}
