package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/nosh-app/nosh/internal/api"
	"github.com/nosh-app/nosh/internal/cache"
	"github.com/nosh-app/nosh/internal/nutrition"
	"github.com/nosh-app/nosh/internal/queue"
)

// Mutation kinds as recorded in the offline queue.
const (
	KindLogFood         = "log_food"
	KindRemoveItem      = "remove_item"
	KindUpdateQuantity  = "update_quantity"
	KindSetCalorieGoal  = "set_calorie_goal"
	KindSetMacroTargets = "set_macro_targets"
)

// Sentinel outcomes surfaced to the UI.
var (
	ErrNothingToCopy = errors.New("nothing to copy")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// NoticeLevel classifies a notice for presentation.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notice is a non-blocking message for the UI ("saved offline", a
// retryable failure, a dropped queue entry).
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Connectivity is the slice of the network monitor the engine needs.
type Connectivity interface {
	Online() bool
	ReportFailure()
	ReportSuccess()
}

// Options configure an Engine.
type Options struct {
	Cache   *cache.Store
	Service api.Service
	Queue   *queue.Queue
	Network Connectivity
	// Notify receives UI notices; may be nil.
	Notify func(Notice)
	// PulseChanged receives sync indicator transitions; may be nil.
	PulseChanged func(SyncState)
}

// Engine applies optimistic mutations against the cache and keeps them
// consistent with the remote service.
type Engine struct {
	cache   *cache.Store
	svc     api.Service
	queue   *queue.Queue
	network Connectivity
	pulse   *Pulse
	notify  func(Notice)

	// Single-slot undo: the server id of the most recently logged item,
	// overwritten on every successful log.
	mu         sync.Mutex
	lastLogged lastLog
}

type lastLog struct {
	date   string
	itemID string
}

// New creates an Engine and registers its replay handlers on the queue.
func New(opts Options) *Engine {
	e := &Engine{
		cache:   opts.Cache,
		svc:     opts.Service,
		queue:   opts.Queue,
		network: opts.Network,
		pulse:   NewPulse(0, opts.PulseChanged),
		notify:  opts.Notify,
	}
	if e.queue != nil {
		e.registerReplayHandlers()
	}
	return e
}

// PulseState exposes the sync indicator for rendering.
func (e *Engine) PulseState() SyncState {
	return e.pulse.State()
}

// Close releases the pulse timer.
func (e *Engine) Close() {
	e.pulse.Stop()
}

func (e *Engine) sendNotice(level NoticeLevel, format string, args ...any) {
	if e.notify != nil {
		e.notify(Notice{Level: level, Message: fmt.Sprintf(format, args...)})
	}
}

// begin runs the synchronous head of the mutation template: cancel
// in-flight fetches, snapshot, apply locally, pulse. It returns the
// rollback snapshot. Everything here happens before the first await, and
// snapshot and apply share one store lock acquisition, so a mutation
// racing another always snapshots the other's committed optimistic state,
// never the state both started from.
func (e *Engine) begin(date string, apply func(nutrition.View) nutrition.View) nutrition.View {
	e.cache.CancelFetch(date)
	var snapshot nutrition.View
	e.cache.Update(date, func(v nutrition.View) nutrition.View {
		snapshot = v.Clone()
		return nutrition.Recalculate(apply(v))
	})
	e.pulse.Pulse()
	return snapshot
}

// settleFailure decides between rollback and offline hand-off after a
// failed remote call. Returns nil when the mutation was queued (the
// optimistic state stands; the user's intent is still valid and will be
// replayed), or a wrapped retryable error after rolling back.
func (e *Engine) settleFailure(date string, snapshot nutrition.View, kind string, payload any, callErr error) error {
	if e.network != nil {
		e.network.ReportFailure()
	}
	if e.network != nil && !e.network.Online() && e.queue != nil {
		if err := e.queue.Enqueue(kind, payload); err != nil {
			// Queueing failed too; fall back to rollback so the cache
			// never diverges from anything that will reach the server.
			e.cache.Restore(date, snapshot)
			return fmt.Errorf("%s: %w", kind, err)
		}
		e.cache.MarkStale(date)
		e.sendNotice(NoticeInfo, "Saved offline — will sync when you're back online")
		return nil
	}
	e.cache.Restore(date, snapshot)
	return fmt.Errorf("%s: %w", kind, callErr)
}

func (e *Engine) settleSuccess(date string) {
	if e.network != nil {
		e.network.ReportSuccess()
	}
	e.cache.MarkStale(date)
}

func (e *Engine) setLastLogged(date, itemID string) {
	e.mu.Lock()
	e.lastLogged = lastLog{date: date, itemID: itemID}
	e.mu.Unlock()
}

func (e *Engine) takeLastLogged() (lastLog, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastLogged.itemID == "" {
		return lastLog{}, false
	}
	slot := e.lastLogged
	e.lastLogged = lastLog{}
	return slot, true
}

func validGoal(value float64) error {
	if !finitePositive(value) {
		return fmt.Errorf("goal must be a positive number, got %v", value)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
