// Package cache holds the date-keyed nutrition views the UI renders from.
//
// # Overview
//
// The Store is the single coordination point between three writers:
//
//	Fetch pipeline:                Mutation engine:           UI:
//	┌─────────────────┐           ┌──────────────────┐      ┌──────────┐
//	│ BeginFetch(date)│           │ Get()  (snapshot)│      │          │
//	│      ↓          │           │ CancelFetch()    │      │  Get()   │
//	│ network I/O     │           │ Update() (apply) │─────→│  render  │
//	│      ↓          │  (mutex)  │ Restore()(revert)│      │          │
//	│ Set() if live   │──────────→│ MarkStale()      │      │          │
//	└─────────────────┘           └──────────────────┘      └──────────┘
//
// Every view that crosses the Store boundary is deep-cloned, in both
// directions. Callers can never mutate cached state through an aliased
// slice, and the cache never observes a caller's later edits.
//
// # Reads never block
//
// Get always returns a view synchronously. A date that has never been
// fetched is seeded with a default view carrying the configured goals, so
// the UI has something coherent to render while the first fetch runs.
// Seeded-but-never-fetched dates report stale.
//
// # Fetch registration
//
// BeginFetch registers an in-flight fetch for a date and cancels the
// previous one: at most one fetch per date is ever live. Registrations
// carry a generation counter so a superseded fetch finishing late removes
// only its own registration, never the newer one's. CancelFetch is how a
// mutation invalidates a fetch that would otherwise overwrite its
// optimistic write.
//
// # Staleness and eviction
//
// A date is stale when it was explicitly marked (after a mutation), was
// never fetched, or aged past the staleness window. Stale means "refetch
// on next natural opportunity"; nothing in this package fetches. Evict
// drops dates unused past the retention window, skipping any date with a
// registered fetch.
package cache
