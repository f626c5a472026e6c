package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nosh-app/nosh/internal/api"
	"github.com/nosh-app/nosh/internal/queue"
)

// Queued payload shapes. These are the durable wire format of the offline
// queue; field names are part of the on-disk contract.

type removeItemPayload struct {
	ItemID string `json:"itemId"`
}

type updateQuantityPayload struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

type goalPayload struct {
	Date     string   `json:"date"`
	KcalGoal *float64 `json:"kcalGoal,omitempty"`
	CarbsG   *float64 `json:"carbsG,omitempty"`
	ProteinG *float64 `json:"proteinG,omitempty"`
	FatG     *float64 `json:"fatG,omitempty"`
}

// registerReplayHandlers installs one handler per mutation kind. Replay
// happens against the remote only; the affected date is marked stale so the
// next fetch folds the server's view back in. All handlers ride on
// idempotent or at-least-once-tolerable remote calls.
func (e *Engine) registerReplayHandlers() {
	e.queue.RegisterHandler(KindLogFood, func(ctx context.Context, payload json.RawMessage) error {
		var req api.CreateEntryRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decode log_food payload: %w", err)
		}
		if _, err := e.svc.CreateEntry(ctx, req); err != nil {
			return err
		}
		e.cache.MarkStale(req.Date)
		return nil
	})

	e.queue.RegisterHandler(KindRemoveItem, func(ctx context.Context, payload json.RawMessage) error {
		var p removeItemPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode remove_item payload: %w", err)
		}
		return e.svc.DeleteEntryItem(ctx, p.ItemID)
	})

	e.queue.RegisterHandler(KindUpdateQuantity, func(ctx context.Context, payload json.RawMessage) error {
		var p updateQuantityPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode update_quantity payload: %w", err)
		}
		_, err := e.svc.PatchEntryItem(ctx, p.ItemID, api.PatchItemRequest{Quantity: &p.Quantity})
		return err
	})

	goalHandler := func(kind string) queue.Handler {
		return func(ctx context.Context, payload json.RawMessage) error {
			var p goalPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return fmt.Errorf("decode %s payload: %w", kind, err)
			}
			if err := e.upsertGoals(ctx, p); err != nil {
				return err
			}
			e.cache.MarkStale(p.Date)
			return nil
		}
	}
	e.queue.RegisterHandler(KindSetCalorieGoal, goalHandler(KindSetCalorieGoal))
	e.queue.RegisterHandler(KindSetMacroTargets, goalHandler(KindSetMacroTargets))
}

// NoticeDroppedMutation builds the queue OnDrop callback: a replay entry
// that exhausted its retries becomes a persistent sync-problem notice.
func NoticeDroppedMutation(notify func(Notice)) func(queue.Mutation, error) {
	return func(m queue.Mutation, err error) {
		if notify == nil {
			return
		}
		notify(Notice{
			Level:   NoticeError,
			Message: fmt.Sprintf("A change saved offline (%s) could not be synced and was discarded", m.Kind),
		})
	}
}
