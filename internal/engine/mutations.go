package engine

import (
	"context"
	"fmt"

	"github.com/nosh-app/nosh/internal/api"
	"github.com/nosh-app/nosh/internal/fetch"
	"github.com/nosh-app/nosh/internal/nutrition"
)

// FoodInput describes the food a user is logging. Kcal and nutrient
// amounts are per unit quantity.
type FoodInput struct {
	FoodID       string
	Name         string
	MealLabel    string
	MealEmoji    string
	MealTypeID   string
	Quantity     float64
	PortionLabel string
	PortionGrams float64
	Kcal         float64
	Macros       nutrition.MacroSet
	Micros       nutrition.Micros
	Emoji        string
	ImageURL     string
}

// LogFood appends a food to the date's log, optimistically under a pending
// id, then creates the entry remotely and reconciles the real id in place.
func (e *Engine) LogFood(ctx context.Context, date string, food FoodInput) error {
	if food.Name == "" {
		return fmt.Errorf("food name required")
	}
	if food.MealLabel == "" {
		return fmt.Errorf("meal label required")
	}

	item := nutrition.LogItem{
		ID:           nutrition.NewPendingID(),
		FoodID:       food.FoodID,
		MealTypeID:   food.MealTypeID,
		MealLabel:    food.MealLabel,
		MealEmoji:    food.MealEmoji,
		Name:         food.Name,
		Quantity:     nutrition.Quantity(food.Quantity),
		PortionLabel: food.PortionLabel,
		PortionGrams: food.PortionGrams,
		Kcal:         food.Kcal,
		Macros:       food.Macros,
		Micros:       food.Micros,
		Emoji:        food.Emoji,
		ImageURL:     food.ImageURL,
	}

	snapshot := e.begin(date, func(v nutrition.View) nutrition.View {
		if si := v.SectionIndex(food.MealLabel); si >= 0 {
			v.Sections[si].Items = append(v.Sections[si].Items, item)
		} else {
			v.Sections = append(v.Sections, nutrition.Section{
				Meal:  food.MealLabel,
				Items: []nutrition.LogItem{item},
			})
		}
		return v
	})

	req := createEntryRequest(date, food)
	resp, err := e.svc.CreateEntry(ctx, req)
	if err != nil {
		return e.settleFailure(date, snapshot, KindLogFood, req, err)
	}

	if len(resp.Items) > 0 {
		e.reconcile(date, item.ID, resp.Items[0].ID)
		e.setLastLogged(date, resp.Items[0].ID)
	}
	e.settleSuccess(date)
	return nil
}

// reconcile swaps a pending id for the server-assigned one at the item's
// current position. Same slot, never remove-and-append: list position
// drives the UI's row identity.
func (e *Engine) reconcile(date string, pending nutrition.ItemID, serverID string) {
	e.cache.Update(date, func(v nutrition.View) nutrition.View {
		if si, ii, ok := v.FindItem(pending); ok {
			v.Sections[si].Items[ii].ID = nutrition.ConfirmedID(serverID)
		}
		return v
	})
}

// RemoveItem deletes an item from the date's log. Removing an item whose
// create has not confirmed yet is local-only; there is no server row to
// delete.
func (e *Engine) RemoveItem(ctx context.Context, date string, id nutrition.ItemID) error {
	if id.IsZero() {
		return fmt.Errorf("item id required")
	}

	snapshot := e.begin(date, func(v nutrition.View) nutrition.View {
		if si, ii, ok := v.FindItem(id); ok {
			sec := &v.Sections[si]
			sec.Items = append(sec.Items[:ii], sec.Items[ii+1:]...)
		}
		return v
	})

	e.dropUndoSlot(id)

	if id.Pending {
		e.cache.MarkStale(date)
		return nil
	}

	if err := e.svc.DeleteEntryItem(ctx, id.Value); err != nil {
		return e.settleFailure(date, snapshot, KindRemoveItem, removeItemPayload{ItemID: id.Value}, err)
	}
	e.settleSuccess(date)
	return nil
}

// UpdateQuantity changes an item's quantity.
func (e *Engine) UpdateQuantity(ctx context.Context, date string, id nutrition.ItemID, quantity float64) error {
	if id.IsZero() {
		return fmt.Errorf("item id required")
	}
	if !finitePositive(quantity) {
		return fmt.Errorf("quantity must be a positive number, got %v", quantity)
	}

	snapshot := e.begin(date, func(v nutrition.View) nutrition.View {
		if si, ii, ok := v.FindItem(id); ok {
			v.Sections[si].Items[ii].Quantity = quantity
		}
		return v
	})

	if id.Pending {
		e.cache.MarkStale(date)
		return nil
	}

	req := api.PatchItemRequest{Quantity: &quantity}
	if _, err := e.svc.PatchEntryItem(ctx, id.Value, req); err != nil {
		payload := updateQuantityPayload{ItemID: id.Value, Quantity: quantity}
		return e.settleFailure(date, snapshot, KindUpdateQuantity, payload, err)
	}
	e.settleSuccess(date)
	return nil
}

// SetCalorieGoal sets the day's calorie goal and persists it both as a
// per-date target and as the new global setting.
func (e *Engine) SetCalorieGoal(ctx context.Context, date string, goal float64) error {
	if err := validGoal(goal); err != nil {
		return err
	}

	snapshot := e.begin(date, func(v nutrition.View) nutrition.View {
		return v.SetGoal(goal)
	})

	payload := goalPayload{Date: date, KcalGoal: &goal}
	if err := e.upsertGoals(ctx, payload); err != nil {
		return e.settleFailure(date, snapshot, KindSetCalorieGoal, payload, err)
	}
	e.settleSuccess(date)
	return nil
}

// MacroGoalInput carries the macro goals to set; nil fields are left alone.
type MacroGoalInput struct {
	CarbsG   *float64
	ProteinG *float64
	FatG     *float64
}

// SetMacroTargets sets goals for the provided macro keys, persisted like
// the calorie goal as per-date target plus global setting.
func (e *Engine) SetMacroTargets(ctx context.Context, date string, goals MacroGoalInput) error {
	if goals.CarbsG == nil && goals.ProteinG == nil && goals.FatG == nil {
		return fmt.Errorf("at least one macro goal required")
	}
	for _, g := range []*float64{goals.CarbsG, goals.ProteinG, goals.FatG} {
		if g != nil {
			if err := validGoal(*g); err != nil {
				return err
			}
		}
	}

	snapshot := e.begin(date, func(v nutrition.View) nutrition.View {
		if goals.CarbsG != nil {
			v = v.SetMacroGoal(nutrition.Carbs, *goals.CarbsG)
		}
		if goals.ProteinG != nil {
			v = v.SetMacroGoal(nutrition.Protein, *goals.ProteinG)
		}
		if goals.FatG != nil {
			v = v.SetMacroGoal(nutrition.Fat, *goals.FatG)
		}
		return v
	})

	payload := goalPayload{
		Date:     date,
		CarbsG:   goals.CarbsG,
		ProteinG: goals.ProteinG,
		FatG:     goals.FatG,
	}
	if err := e.upsertGoals(ctx, payload); err != nil {
		return e.settleFailure(date, snapshot, KindSetMacroTargets, payload, err)
	}
	e.settleSuccess(date)
	return nil
}

// CopyPriorDay re-logs every item from one date under another. Not
// optimistic: the source data lives server-side, so it is fetched first and
// the target date is only invalidated after the writes land. Returns the
// number of items copied; ErrNothingToCopy when the source day is empty.
func (e *Engine) CopyPriorDay(ctx context.Context, from, to string) (int, error) {
	if from == to {
		return 0, fmt.Errorf("source and target date are the same")
	}

	entries, err := e.svc.ListEntries(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", from, err)
	}
	sections := fetch.BuildSections(entries)
	if len(sections) == 0 {
		return 0, ErrNothingToCopy
	}

	e.pulse.Pulse()

	copied := 0
	for _, sec := range sections {
		req := api.CreateEntryRequest{
			Date:      to,
			MealLabel: sec.Meal,
			Items:     make([]api.NewEntryItem, 0, len(sec.Items)),
		}
		for _, item := range sec.Items {
			if req.MealTypeID == "" {
				req.MealTypeID = item.MealTypeID
			}
			if req.MealEmoji == "" {
				req.MealEmoji = item.MealEmoji
			}
			req.Items = append(req.Items, newEntryItem(item))
		}
		if _, err := e.svc.CreateEntry(ctx, req); err != nil {
			e.cache.MarkStale(to)
			return copied, fmt.Errorf("copy %s section: %w", sec.Meal, err)
		}
		copied += len(sec.Items)
	}

	e.cache.CancelFetch(to)
	e.cache.MarkStale(to)
	if e.network != nil {
		e.network.ReportSuccess()
	}
	return copied, nil
}

// UndoLastLog deletes the most recently logged item. Single-slot: only the
// last successful log is undoable, and only once.
func (e *Engine) UndoLastLog(ctx context.Context) error {
	slot, ok := e.takeLastLogged()
	if !ok {
		return ErrNothingToUndo
	}
	return e.RemoveItem(ctx, slot.date, nutrition.ConfirmedID(slot.itemID))
}

func (e *Engine) dropUndoSlot(id nutrition.ItemID) {
	e.mu.Lock()
	if e.lastLogged.itemID == id.Value {
		e.lastLogged = lastLog{}
	}
	e.mu.Unlock()
}

func (e *Engine) upsertGoals(ctx context.Context, p goalPayload) error {
	targets := api.TargetsRequest{
		Date:     p.Date,
		KcalGoal: p.KcalGoal,
		CarbsG:   p.CarbsG,
		ProteinG: p.ProteinG,
		FatG:     p.FatG,
	}
	if err := e.svc.UpsertTargets(ctx, targets); err != nil {
		return err
	}
	settings := api.SettingsRequest{
		KcalGoal: p.KcalGoal,
		CarbsG:   p.CarbsG,
		ProteinG: p.ProteinG,
		FatG:     p.FatG,
	}
	return e.svc.UpsertSettings(ctx, settings)
}

func createEntryRequest(date string, food FoodInput) api.CreateEntryRequest {
	item := api.NewEntryItem{
		FoodID:        food.FoodID,
		Name:          food.Name,
		Quantity:      nutrition.Quantity(food.Quantity),
		PortionLabel:  food.PortionLabel,
		Kcal:          food.Kcal,
		CarbsG:        food.Macros.Carbs,
		ProteinG:      food.Macros.Protein,
		FatG:          food.Macros.Fat,
		SodiumMG:      food.Micros.SodiumMG,
		FiberG:        food.Micros.FiberG,
		SugarG:        food.Micros.SugarG,
		PotassiumMG:   food.Micros.PotassiumMG,
		CholesterolMG: food.Micros.CholesterolMG,
		SaturatedFatG: food.Micros.SaturatedFatG,
		Emoji:         food.Emoji,
		ImageURL:      food.ImageURL,
	}
	if food.PortionGrams > 0 {
		grams := food.PortionGrams
		item.PortionGrams = &grams
	}
	return api.CreateEntryRequest{
		Date:       date,
		MealTypeID: food.MealTypeID,
		MealLabel:  food.MealLabel,
		MealEmoji:  food.MealEmoji,
		Items:      []api.NewEntryItem{item},
	}
}

func newEntryItem(item nutrition.LogItem) api.NewEntryItem {
	out := api.NewEntryItem{
		FoodID:        item.FoodID,
		Name:          item.Name,
		Quantity:      item.Quantity,
		PortionLabel:  item.PortionLabel,
		Kcal:          item.Kcal,
		CarbsG:        item.Macros.Carbs,
		ProteinG:      item.Macros.Protein,
		FatG:          item.Macros.Fat,
		SodiumMG:      item.Micros.SodiumMG,
		FiberG:        item.Micros.FiberG,
		SugarG:        item.Micros.SugarG,
		PotassiumMG:   item.Micros.PotassiumMG,
		CholesterolMG: item.Micros.CholesterolMG,
		SaturatedFatG: item.Micros.SaturatedFatG,
		Emoji:         item.Emoji,
		ImageURL:      item.ImageURL,
	}
	if item.PortionGrams > 0 {
		grams := item.PortionGrams
		out.PortionGrams = &grams
	}
	return out
}
