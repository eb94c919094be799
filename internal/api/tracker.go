// Package api is the presentation-facing surface of chronii.
//
// A Tracker owns the in-memory history: it reloads entries from storage,
// groups and totals them, tracks the selection and drives the live clock.
// Intents flow in through Tracker methods; state flows out as immutable
// Snapshots on Subscribe channels. Every mutation, reload and clock tick runs
// under one lock, so a tick never observes a half-applied mutation.
package api

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"chronii/internal/aggregation"
	"chronii/internal/clock"
	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/logging"
	"chronii/internal/selection"
	"chronii/internal/services"
)

// Snapshot is the state handed to subscribers. Treat it as read-only.
type Snapshot struct {
	Version       uint64
	View          aggregation.View
	Filter        domain.ProjectFilter
	Selected      []domain.TimeEntry
	SelectedTotal time.Duration
	Ticking       bool
}

// Options configures a Tracker
type Options struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	// Limit caps how many of the newest entries are loaded; zero loads all.
	Limit  int
	Filter domain.ProjectFilter
}

// Tracker coordinates the entry services, the aggregation engine, the
// selection and the live clock.
type Tracker struct {
	mu sync.Mutex

	entries services.EntryService
	clock   clockwork.Clock
	ticker  *clock.Ticker
	limit   int

	engine    *aggregation.Engine
	selection *selection.Set

	version uint64
	subs    map[int]chan Snapshot
	nextSub int
}

// NewTracker creates a tracker over the given services. Call Reload before
// reading the first snapshot.
func NewTracker(svc *services.ServiceContainer, opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	engine := aggregation.NewEngine(opts.Clock.Now())
	engine.SetFilter(opts.Filter)

	return &Tracker{
		entries:   svc.EntryService,
		clock:     opts.Clock,
		ticker:    clock.NewTicker(opts.Clock, opts.TickInterval),
		limit:     opts.Limit,
		engine:    engine,
		selection: selection.New(),
		subs:      make(map[int]chan Snapshot),
	}
}

// Reload replaces the in-memory entry list from storage. On failure the
// previous view is kept.
func (t *Tracker) Reload(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reloadLocked(ctx)
}

func (t *Tracker) reloadLocked(ctx context.Context) error {
	list, err := t.entries.List(ctx, services.ListOptions{Limit: t.limit, Filter: domain.AllProjects()})
	if err != nil {
		if errors.ShouldLogError(err) {
			logging.Logger().Error("reload failed", "error", err)
		}
		return err
	}

	t.engine.SetEntries(list)
	t.engine.Tick(t.clock.Now())
	t.syncTickerLocked()
	t.publishLocked()
	return nil
}

// afterMutation refreshes the view once a mutation has been persisted
func (t *Tracker) afterMutation(ctx context.Context) error {
	return t.reloadLocked(ctx)
}

// afterFailure refreshes the view when a failed mutation may have reached
// storage. Rejected input and missing entries never touch storage, so the view
// is left as is. The mutation error is returned either way.
func (t *Tracker) afterFailure(ctx context.Context, err error) error {
	if errors.IsValidation(err) || errors.IsNotFound(err) || errors.IsErrorType(err, errors.ErrorTypeInvalidInput) {
		return err
	}
	if rerr := t.reloadLocked(ctx); rerr != nil {
		logging.Logger().Warn("view may be stale after failed mutation", "error", err, "reload_error", rerr)
	}
	return err
}

// syncTickerLocked runs the clock only while the current view has an open entry
func (t *Tracker) syncTickerLocked() {
	t.ticker.SetActive(t.engine.HasOpen())
}

// Snapshot returns the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	view := t.engine.View()
	selected := t.selection.Selected(t.engine.Entries())
	return Snapshot{
		Version:       t.version,
		View:          view,
		Filter:        t.engine.Filter(),
		Selected:      selected,
		SelectedTotal: aggregation.Total(selected, view.Now),
		Ticking:       t.ticker.Active(),
	}
}

// Subscribe returns a channel that receives the current snapshot and every
// later one. Delivery is latest-wins: a slow reader skips intermediate
// snapshots. The returned function unsubscribes and closes the channel.
func (t *Tracker) Subscribe() (<-chan Snapshot, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan Snapshot, 1)
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	ch <- t.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
}

func (t *Tracker) publishLocked() {
	t.version++
	if len(t.subs) == 0 {
		return
	}
	snap := t.snapshotLocked()
	for _, ch := range t.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Run forwards clock ticks into the view until ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	defer t.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.ticker.C():
			t.tick(now)
		}
	}
}

func (t *Tracker) tick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.engine.Tick(now)
	t.syncTickerLocked()
	t.publishLocked()
}

// Close stops the live clock
func (t *Tracker) Close() {
	t.ticker.Stop()
}

// SetProjectFilter restricts the view to a project bucket
func (t *Tracker) SetProjectFilter(f domain.ProjectFilter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.engine.SetFilter(f)
	t.syncTickerLocked()
	t.publishLocked()
}

// ToggleSelection flips the selection of id and reports whether it is now selected
func (t *Tracker) ToggleSelection(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	selected := t.selection.Toggle(id)
	t.publishLocked()
	return selected
}

// ClearSelection deselects everything
func (t *Tracker) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Clear()
	t.publishLocked()
}

// SelectedEntries projects the selection onto the loaded entries
func (t *Tracker) SelectedEntries() []domain.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.Selected(t.engine.Entries())
}
