// Package engine orchestrates user-initiated changes to the nutrition log
// as optimistic mutations.
//
// # Overview
//
// Every mutation kind follows one template:
//
//	1. Cancel any in-flight fetch for the date
//	2. Snapshot the cached view (the rollback point)
//	3. Apply the change locally through the cache's read-modify-write,
//	   re-deriving totals from the item list
//	4. Pulse the sync indicator
//	5. Call the remote service
//
// Steps 1-4 are synchronous, and steps 2-3 run under a single store lock
// acquisition, so a second mutation dispatched back-to-back or racing on
// another goroutine snapshots the first one's committed optimistic state
// rather than the state both started from. Only step 5 awaits the
// network.
//
// # Settling
//
// The remote call resolves one of three ways:
//
//   - Success: server-assigned identifiers are reconciled into the cached
//     view in place (same list slot, never remove-and-append), and the
//     date is marked stale so the next natural fetch folds in
//     authoritative data. Success never triggers an immediate refetch;
//     that would flicker and reopen the stale-overwrite race.
//   - Failure while online: the snapshot from step 1 is restored and the
//     error is returned to the caller.
//   - Failure while offline: the mutation is handed to the durable queue,
//     the optimistic state stands, and the caller sees success plus a
//     "saved offline" notice. The queue replays it when connectivity
//     returns.
//
// # Pending identity
//
// An item logged optimistically carries a pending id until its create
// confirms. Removing or re-quantifying a pending item is local-only;
// there is no server row to address yet. The pending/confirmed
// distinction is part of the id's identity, not a naming convention on
// its value.
//
// # Non-template operations
//
// CopyPriorDay is deliberately not optimistic: the source day's data
// lives server-side, so it is read first and the target date is only
// invalidated after the writes land. UndoLastLog is a single-slot
// convenience over RemoveItem: only the most recent successful log is
// undoable, and only once.
package engine
