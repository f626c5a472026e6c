// Package fetch retrieves a date's nutrition view from the remote service.
//
// The pipeline is checkpointed against cancellation: before the identity
// ensure, after the parallel reads resolve, and again before the caller
// commits to the cache. A fetch superseded by a newer fetch or by an
// optimistic mutation still finishes its network I/O but its result is
// discarded; writing it back would silently undo the user's newer state.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/nosh-app/nosh/internal/api"
	"github.com/nosh-app/nosh/internal/cache"
	"github.com/nosh-app/nosh/internal/nutrition"
)

const defaultIdentityTimeout = 3 * time.Second

// Pipeline composes the remote reads that make up one view load.
type Pipeline struct {
	svc             api.Service
	defaultKcalGoal float64
	defaultMacros   nutrition.MacroSet
	identityTimeout time.Duration
}

// Options configure a Pipeline.
type Options struct {
	Service           api.Service
	DefaultKcalGoal   float64
	DefaultMacroGoals nutrition.MacroSet
	// IdentityTimeout bounds the ensure-identity step so a slow remote
	// cannot stall the whole load. Zero uses the default.
	IdentityTimeout time.Duration
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	timeout := opts.IdentityTimeout
	if timeout <= 0 {
		timeout = defaultIdentityTimeout
	}
	return &Pipeline{
		svc:             opts.Service,
		defaultKcalGoal: opts.DefaultKcalGoal,
		defaultMacros:   opts.DefaultMacroGoals,
		identityTimeout: timeout,
	}
}

// Load retrieves and composes the view for a date. Errors propagate to the
// caller untouched; the caller decides whether anything is committed.
func (p *Pipeline) Load(ctx context.Context, date string) (nutrition.View, error) {
	if err := ctx.Err(); err != nil {
		return nutrition.View{}, err
	}

	p.ensureIdentity(ctx)

	if err := ctx.Err(); err != nil {
		return nutrition.View{}, err
	}

	var (
		wg          sync.WaitGroup
		entries     api.EntriesResponse
		entriesErr  error
		summary     api.SummaryResponse
		summaryErr  error
		settings    api.SettingsResponse
		settingsErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		entries, entriesErr = p.svc.ListEntries(ctx, date)
	}()
	go func() {
		defer wg.Done()
		summary, summaryErr = p.svc.GetSummary(ctx, date)
	}()
	go func() {
		defer wg.Done()
		settings, settingsErr = p.svc.GetSettings(ctx)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nutrition.View{}, err
	}
	if entriesErr != nil {
		return nutrition.View{}, fmt.Errorf("list entries: %w", entriesErr)
	}
	if summaryErr != nil {
		return nutrition.View{}, fmt.Errorf("get summary: %w", summaryErr)
	}
	if settingsErr != nil {
		return nutrition.View{}, fmt.Errorf("get settings: %w", settingsErr)
	}

	view := nutrition.View{
		Date:     date,
		Sections: BuildSections(entries),
	}
	if summary.Totals != nil {
		view.Summary.Burned = summary.Totals.Burned
	} else {
		view.Summary.Burned = summary.Burned
	}
	view.Summary.Goal = resolveGoal(kcalCandidates(summary, settings), p.defaultKcalGoal)
	for _, key := range nutrition.MacroKeys {
		view.Macros = append(view.Macros, nutrition.Macro{
			Key:  key,
			Goal: resolveGoal(macroCandidates(key, summary, settings), p.defaultMacros.Get(key)),
		})
	}
	return nutrition.Recalculate(view), nil
}

// Refresh runs Load under the store's per-date fetch registration and
// commits the result only while the fetch context is still live. This is
// the only path that writes fetched data into the cache.
func (p *Pipeline) Refresh(ctx context.Context, store *cache.Store, date string) error {
	fctx, done := store.BeginFetch(ctx, date)
	defer done()

	view, err := p.Load(fctx, date)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	if fctx.Err() != nil {
		// Superseded while in flight; drop the result on the floor.
		return nil
	}
	store.Set(date, view)
	return nil
}

// ensureIdentity runs the idempotent profile ensure with its own timeout.
// A slow or failing ensure degrades to "identity absent" instead of
// blocking the load; the reads that follow surface any real outage.
func (p *Pipeline) ensureIdentity(ctx context.Context) {
	ictx, cancel := context.WithTimeout(ctx, p.identityTimeout)
	defer cancel()
	if err := p.svc.EnsureIdentity(ictx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("ensure identity: %v", err)
	}
}

// BuildSections groups the wire entries and items into meal sections, one
// section per meal label, in entry order.
func BuildSections(resp api.EntriesResponse) []nutrition.Section {
	byEntry := make(map[string][]api.EntryItem, len(resp.Entries))
	for _, item := range resp.Items {
		byEntry[item.EntryID] = append(byEntry[item.EntryID], item)
	}

	var sections []nutrition.Section
	index := make(map[string]int)
	for _, e := range resp.Entries {
		items := byEntry[e.ID]
		if len(items) == 0 {
			continue
		}
		si, ok := index[e.MealLabel]
		if !ok {
			sections = append(sections, nutrition.Section{Meal: e.MealLabel, Time: e.LoggedAt})
			si = len(sections) - 1
			index[e.MealLabel] = si
		}
		for _, item := range items {
			sections[si].Items = append(sections[si].Items, itemFromWire(e, item))
		}
	}
	return sections
}

func itemFromWire(e api.Entry, item api.EntryItem) nutrition.LogItem {
	var grams float64
	if item.PortionGrams != nil {
		grams = *item.PortionGrams
	}
	return nutrition.LogItem{
		ID:           nutrition.ConfirmedID(item.ID),
		FoodID:       item.FoodID,
		MealTypeID:   e.MealTypeID,
		MealLabel:    e.MealLabel,
		MealEmoji:    e.MealEmoji,
		Name:         item.Name,
		Quantity:     nutrition.Quantity(item.Quantity),
		PortionLabel: item.PortionLabel,
		PortionGrams: grams,
		Kcal:         item.Kcal,
		Macros: nutrition.MacroSet{
			Carbs:   item.CarbsG,
			Protein: item.ProteinG,
			Fat:     item.FatG,
		},
		Micros: nutrition.Micros{
			SodiumMG:      item.SodiumMG,
			FiberG:        item.FiberG,
			SugarG:        item.SugarG,
			PotassiumMG:   item.PotassiumMG,
			CholesterolMG: item.CholesterolMG,
			SaturatedFatG: item.SaturatedFatG,
		},
		Emoji:    item.Emoji,
		ImageURL: item.ImageURL,
	}
}

// resolveGoal picks the first finite positive candidate, falling back to
// the application default. Candidate order encodes the precedence: per-date
// target, then the summary's settings snapshot, then global settings.
func resolveGoal(candidates []*float64, fallback float64) float64 {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if v := *c; !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 {
			return v
		}
	}
	return fallback
}

func kcalCandidates(summary api.SummaryResponse, settings api.SettingsResponse) []*float64 {
	var out []*float64
	if summary.Targets != nil {
		out = append(out, summary.Targets.KcalGoal)
	}
	if summary.Settings != nil {
		out = append(out, summary.Settings.KcalGoal)
	}
	if settings.Settings != nil {
		out = append(out, settings.Settings.KcalGoal)
	}
	return out
}

func macroCandidates(key nutrition.MacroKey, summary api.SummaryResponse, settings api.SettingsResponse) []*float64 {
	pick := func(g *api.NutrientGoals) *float64 {
		if g == nil {
			return nil
		}
		switch key {
		case nutrition.Carbs:
			return g.CarbsG
		case nutrition.Protein:
			return g.ProteinG
		case nutrition.Fat:
			return g.FatG
		}
		return nil
	}
	return []*float64{pick(summary.Targets), pick(summary.Settings), pick(settings.Settings)}
}
