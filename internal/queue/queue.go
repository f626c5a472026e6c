package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// fileVersion is the on-disk envelope version. Files with an unknown
// version are moved aside instead of parsed.
const fileVersion = 1

// defaultMaxAttempts bounds replay retries per entry. An entry that still
// fails after this many connectivity cycles is dropped and surfaced through
// OnDrop; halting the whole queue behind it would strand every later
// mutation too.
const defaultMaxAttempts = 5

// Handler replays one queued mutation. Handlers must tolerate duplicate
// delivery: a crash between remote success and queue removal re-delivers
// the entry on the next drain.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Mutation is one pending entry.
type Mutation struct {
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Attempts   int             `json:"attempts,omitempty"`
}

type envelope struct {
	Version   int        `json:"version"`
	Mutations []Mutation `json:"mutations"`
}

// Queue is a durable FIFO of pending mutations with a registry of replay
// handlers. Safe for concurrent use.
type Queue struct {
	mu          sync.Mutex
	path        string
	entries     []Mutation
	handlers    map[string]Handler
	maxAttempts int
	onDrop      func(Mutation, error)
	draining    bool
}

// Options configure a Queue.
type Options struct {
	// MaxAttempts overrides the per-entry retry bound. Zero uses the
	// default.
	MaxAttempts int
	// OnDrop is called when an entry exhausts its retries and is removed
	// without succeeding.
	OnDrop func(Mutation, error)
}

// Open loads the queue file at path, creating an empty queue when the file
// does not exist.
func Open(path string, opts Options) (*Queue, error) {
	q := &Queue{
		path:        path,
		handlers:    make(map[string]Handler),
		maxAttempts: opts.MaxAttempts,
		onDrop:      opts.OnDrop,
	}
	if q.maxAttempts <= 0 {
		q.maxAttempts = defaultMaxAttempts
	}
	if err := q.load(); err != nil {
		return nil, err
	}
	return q, nil
}

// RegisterHandler installs the replay handler for a mutation kind.
func (q *Queue) RegisterHandler(kind string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[kind] = h
}

// Enqueue appends a mutation and persists the queue before returning.
func (q *Queue) Enqueue(kind string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, Mutation{
		Kind:       kind,
		Payload:    encoded,
		EnqueuedAt: time.Now(),
	})
	return q.persist()
}

// Len returns the number of pending mutations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Pending returns a copy of the queued mutations in replay order.
func (q *Queue) Pending() []Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()
	dup := make([]Mutation, len(q.entries))
	copy(dup, q.entries)
	return dup
}

// Drain replays pending mutations strictly in enqueue order. The first
// handler failure stops the drain with the entry left at the head; later
// entries are never attempted ahead of it because they may depend on its
// effect. An entry that has exhausted its retry budget is dropped and
// reported through OnDrop instead of blocking the queue forever.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return nil
	}
	q.draining = true
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		q.mu.Lock()
		if len(q.entries) == 0 {
			q.mu.Unlock()
			return nil
		}
		head := q.entries[0]
		handler, ok := q.handlers[head.Kind]
		q.mu.Unlock()

		if !ok {
			return fmt.Errorf("no handler registered for %q", head.Kind)
		}

		err := handler(ctx, head.Payload)
		if err == nil {
			q.mu.Lock()
			q.pop()
			persistErr := q.persist()
			q.mu.Unlock()
			if persistErr != nil {
				return persistErr
			}
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		q.mu.Lock()
		q.entries[0].Attempts++
		dropped := q.entries[0].Attempts >= q.maxAttempts
		var droppedEntry Mutation
		if dropped {
			droppedEntry = q.entries[0]
			q.pop()
		}
		persistErr := q.persist()
		q.mu.Unlock()
		if persistErr != nil {
			return persistErr
		}
		if dropped {
			log.Printf("queue: dropping %s after %d failed replays: %v", droppedEntry.Kind, droppedEntry.Attempts, err)
			if q.onDrop != nil {
				q.onDrop(droppedEntry, err)
			}
			continue
		}
		// Head stays put; retry on the next connectivity event.
		return nil
	}
}

func (q *Queue) pop() {
	copy(q.entries, q.entries[1:])
	q.entries = q.entries[:len(q.entries)-1]
}

func (q *Queue) load() error {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read queue: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Version != fileVersion {
		// A corrupt or future-version file must not poison replay; move it
		// aside and start empty.
		aside := q.path + ".bad"
		if renameErr := os.Rename(q.path, aside); renameErr == nil {
			log.Printf("queue: unreadable queue file moved to %s", aside)
		}
		return nil
	}
	q.entries = env.Mutations
	return nil
}

// persist is called with q.mu held.
func (q *Queue) persist() error {
	env := envelope{Version: fileVersion, Mutations: q.entries}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}
	if err := atomic.WriteFile(q.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write queue: %w", err)
	}
	return nil
}
