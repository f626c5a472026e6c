package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nosh-app/nosh/internal/cache"
	"github.com/nosh-app/nosh/internal/fetch"
)

const (
	refreshTick = 15 * time.Second
	evictEvery  = 10 * time.Minute
)

// focus tracks the date the user is currently looking at.
type focus struct {
	mu   sync.Mutex
	date string
}

func newFocus(date string) *focus {
	return &focus{date: date}
}

func (f *focus) set(date string) {
	f.mu.Lock()
	f.date = date
	f.mu.Unlock()
}

func (f *focus) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.date
}

// startRefresher launches the background loop that refetches the focused
// date once it goes stale and evicts long-unused dates. It returns
// immediately. A refetch here rides the same per-date fetch registration
// as every other load, so an optimistic mutation cancels it like any other
// in-flight fetch.
func startRefresher(ctx context.Context, pipeline *fetch.Pipeline, store *cache.Store, f *focus) {
	go func() {
		ticker := time.NewTicker(refreshTick)
		defer ticker.Stop()
		lastEvict := time.Now()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			date := f.get()
			if store.IsStale(date) {
				if err := pipeline.Refresh(ctx, store, date); err != nil && ctx.Err() == nil {
					log.Printf("refresh %s: %v", date, err)
				}
			}

			if time.Since(lastEvict) > evictEvery {
				store.Evict(time.Now())
				lastEvict = time.Now()
			}
		}
	}()
}
