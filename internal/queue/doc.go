// Package queue persists mutations that failed while offline and replays
// them in order once connectivity returns.
//
// # Overview
//
// The queue is the durable half of the offline story. A mutation the
// engine could not deliver is appended here as an opaque kind plus JSON
// payload; when the network monitor reports an offline-to-online edge,
// Drain replays the entries through their registered handlers in strict
// enqueue order.
//
// # On-disk format
//
// Entries live in a single JSON file wrapped in a versioned envelope:
//
//	{"version": 1, "mutations": [{"kind": "...", "payload": {...}}]}
//
// Every change is written through an atomic rename, so a crash leaves
// either the old file or the new one, never a torn write. A file that is
// corrupt or carries an unknown version is moved aside to <path>.bad
// rather than parsed or deleted, since losing the queue silently would lose
// user data.
//
// # Ordering and failure
//
// Drain works the head of the queue only. A head entry that fails stays
// at the head and halts the drain; later entries never jump ahead, since
// they may depend on earlier ones. The failed attempt is counted and
// persisted. An entry that exhausts its attempt budget is dropped and
// surfaced through OnDrop, because halting the whole queue behind a
// poison entry would strand every later mutation too.
//
// # Delivery semantics
//
// Replay is at-least-once: a crash between a handler's remote success and
// the queue removal re-delivers the entry on the next drain. Handlers
// must ride on idempotent or duplicate-tolerable remote calls.
package queue
