// Package app wires the sync core together and boots the UI.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/nosh-app/nosh/internal/api"
	"github.com/nosh-app/nosh/internal/cache"
	"github.com/nosh-app/nosh/internal/config"
	"github.com/nosh-app/nosh/internal/engine"
	"github.com/nosh-app/nosh/internal/fetch"
	"github.com/nosh-app/nosh/internal/netcheck"
	"github.com/nosh-app/nosh/internal/nutrition"
	"github.com/nosh-app/nosh/internal/prefs"
	"github.com/nosh-app/nosh/internal/queue"
	"github.com/nosh-app/nosh/internal/ui"
)

// Options configure the nosh application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/nosh/prefs.toml
	Date       string // empty restores the last viewed date, else today
}

// Run boots nosh until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := api.NewClient(cfg.APIBase, cfg.AuthToken)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := cache.New(cache.Options{
		DefaultKcalGoal: cfg.DefaultKcalGoal,
		StaleAfter:      cfg.StaleAfter,
	})

	notices := make(chan engine.Notice, 16)
	notify := func(n engine.Notice) {
		select {
		case notices <- n:
		default:
			// UI is behind; dropping a cosmetic notice beats blocking a
			// mutation.
		}
	}

	pending, err := queue.Open(cfg.QueuePath(), queue.Options{
		OnDrop: engine.NoticeDroppedMutation(notify),
	})
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}

	monitor := netcheck.New(client.EnsureIdentity, cfg.ProbeInterval)

	eng := engine.New(engine.Options{
		Cache:   store,
		Service: client,
		Queue:   pending,
		Network: monitor,
		Notify:  notify,
	})
	defer eng.Close()

	pipeline := fetch.New(fetch.Options{
		Service:         client,
		DefaultKcalGoal: cfg.DefaultKcalGoal,
	})

	monitor.OnOnline(func() {
		go func() {
			if err := pending.Drain(ctx); err != nil && ctx.Err() == nil {
				log.Printf("queue drain: %v", err)
			}
		}()
	})
	monitor.Start(ctx)

	// The monitor starts online, so mutations persisted by a previous
	// session see no offline-to-online edge; replay them now.
	replayPending(ctx, pending)

	startDate := opts.Date
	if startDate == "" {
		startDate = userPrefs.LastDate
	}
	if startDate == "" {
		startDate = nutrition.Today()
	}

	focus := newFocus(startDate)
	startRefresher(ctx, pipeline, store, focus)

	// Populate the starting date before the UI comes up; failures leave the
	// seeded default view in place and the refresher retries.
	if err := pipeline.Refresh(ctx, store, startDate); err != nil {
		log.Printf("initial load %s: %v", startDate, err)
	}

	uiOpts := ui.Options{
		Context: ctx,
		Engine:  eng,
		Store:   store,
		Date:    startDate,
		Theme:   userPrefs.Theme,
		Notices: notices,
		Offline: func() bool { return !monitor.Online() },
		Load: func(date string) error {
			return pipeline.Refresh(ctx, store, date)
		},
		DateChanged: func(date string) {
			focus.set(date)
			userPrefs.LastDate = date
			if err := prefs.Save(opts.PrefsPath, userPrefs); err != nil {
				log.Printf("save prefs: %v", err)
			}
		},
	}
	return ui.Run(uiOpts)
}

// replayPending drains mutations left over from a previous session.
func replayPending(ctx context.Context, pending *queue.Queue) {
	if pending == nil || pending.Len() == 0 {
		return
	}
	go func() {
		if err := pending.Drain(ctx); err != nil && ctx.Err() == nil {
			log.Printf("replay pending mutations: %v", err)
		}
	}()
}
