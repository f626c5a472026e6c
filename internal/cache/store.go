package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nosh-app/nosh/internal/nutrition"
)

const (
	defaultStaleAfter = 2 * time.Minute
	defaultRetainFor  = 30 * time.Minute
)

// Options configure a Store.
type Options struct {
	// DefaultKcalGoal seeds views for dates that have never been fetched.
	DefaultKcalGoal float64
	// DefaultMacroGoals seeds macro goals the same way.
	DefaultMacroGoals nutrition.MacroSet
	// StaleAfter is how long a fetched view stays fresh. Zero uses the
	// default.
	StaleAfter time.Duration
	// RetainFor is how long an unused view survives before eviction. Zero
	// uses the default.
	RetainFor time.Duration
}

type entry struct {
	view       nutrition.View
	fetchedAt  time.Time
	lastAccess time.Time
	stale      bool
}

// Store maps local calendar dates to nutrition views.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	opts    Options

	// One in-flight fetch per date; starting or cancelling a fetch for a
	// date tears down the previous one.
	fetches  map[string]fetchReg
	fetchGen uint64
}

type fetchReg struct {
	cancel context.CancelFunc
	gen    uint64
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = defaultStaleAfter
	}
	if opts.RetainFor <= 0 {
		opts.RetainFor = defaultRetainFor
	}
	return &Store{
		entries: make(map[string]*entry),
		fetches: make(map[string]fetchReg),
		opts:    opts,
	}
}

// Get returns a copy of the view for a date, seeding a zeroed default view
// on first access so callers never observe a missing date.
func (s *Store) Get(date string) nutrition.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked(date).view.Clone()
}

// Set replaces the view for a date with freshly fetched data.
func (s *Store) Set(date string, view nutrition.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.locked(date)
	e.view = view.Clone()
	e.fetchedAt = time.Now()
	e.stale = false
}

// Restore puts a previously captured snapshot back without touching the
// staleness clock. Used by mutation rollback.
func (s *Store) Restore(date string, snapshot nutrition.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.locked(date)
	e.view = snapshot.Clone()
}

// Update applies fn to the current view under the store lock, a
// read-modify-write against whatever is cached right now. Two mutations
// racing on the same date therefore compose instead of the later one
// clobbering the earlier one's write.
func (s *Store) Update(date string, fn func(nutrition.View) nutrition.View) nutrition.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.locked(date)
	e.view = fn(e.view.Clone())
	return e.view.Clone()
}

// MarkStale flags a date for refetch on the next natural opportunity
// without forcing one now.
func (s *Store) MarkStale(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked(date).stale = true
}

// IsStale reports whether a date needs a refetch: explicitly marked, never
// fetched, or past the staleness window.
func (s *Store) IsStale(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[date]
	if !ok {
		return true
	}
	if e.stale || e.fetchedAt.IsZero() {
		return true
	}
	return time.Since(e.fetchedAt) > s.opts.StaleAfter
}

// Evict drops views that have not been touched within the retention window.
// In-flight fetches keep their dates alive.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for date, e := range s.entries {
		if _, fetching := s.fetches[date]; fetching {
			continue
		}
		if now.Sub(e.lastAccess) > s.opts.RetainFor {
			delete(s.entries, date)
			evicted++
		}
	}
	return evicted
}

// BeginFetch registers a new in-flight fetch for a date, cancelling any
// previous one, and returns the context the fetch must run under plus a
// done func the fetch calls when it finishes.
func (s *Store) BeginFetch(parent context.Context, date string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if prev, ok := s.fetches[date]; ok {
		prev.cancel()
	}
	s.fetchGen++
	gen := s.fetchGen
	s.fetches[date] = fetchReg{cancel: cancel, gen: gen}
	s.mu.Unlock()

	done := func() {
		s.mu.Lock()
		if current, ok := s.fetches[date]; ok && current.gen == gen {
			delete(s.fetches, date)
		}
		s.mu.Unlock()
		cancel()
	}
	return ctx, done
}

// CancelFetch tears down the in-flight fetch for a date, if any. Mutations
// call this before applying their optimistic write so a stale response
// cannot land on top of it.
func (s *Store) CancelFetch(date string) {
	s.mu.Lock()
	reg, ok := s.fetches[date]
	if ok {
		delete(s.fetches, date)
	}
	s.mu.Unlock()
	if ok {
		reg.cancel()
	}
}

func (s *Store) locked(date string) *entry {
	e, ok := s.entries[date]
	if !ok {
		e = &entry{
			view: nutrition.DefaultView(date, s.opts.DefaultKcalGoal, s.opts.DefaultMacroGoals),
		}
		s.entries[date] = e
	}
	e.lastAccess = time.Now()
	return e
}
