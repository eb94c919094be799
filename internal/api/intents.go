package api

import (
	"context"

	"chronii/internal/domain"
	"chronii/internal/services"
)

// Mutations persist first and refresh the view afterwards. A mutation that
// fails in storage still refreshes, since storage is the source of truth; one
// rejected before reaching storage leaves the view untouched. When the
// mutation succeeds but the refresh fails, the result is returned together
// with the refresh error.

// Start stops any running entry and starts a new one
func (t *Tracker) Start(ctx context.Context, taskName string, project *string) (*services.StartResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result, err := t.entries.Start(ctx, taskName, project)
	if err != nil {
		return nil, t.afterFailure(ctx, err)
	}
	return result, t.afterMutation(ctx)
}

// Stop closes an entry if it is running
func (t *Tracker) Stop(ctx context.Context, id int64) (*services.StopResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result, err := t.entries.Stop(ctx, id)
	if err != nil {
		return nil, t.afterFailure(ctx, err)
	}
	if result.AlreadyStopped {
		return result, nil
	}
	return result, t.afterMutation(ctx)
}

// StopActive stops whatever is running
func (t *Tracker) StopActive(ctx context.Context) ([]domain.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stopped, err := t.entries.StopActive(ctx)
	if err != nil {
		return stopped, t.afterFailure(ctx, err)
	}
	if len(stopped) == 0 {
		return stopped, nil
	}
	return stopped, t.afterMutation(ctx)
}

// Edit applies a patch all-or-nothing
func (t *Tracker) Edit(ctx context.Context, id int64, patch domain.EntryPatch) (*domain.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	updated, err := t.entries.Edit(ctx, id, patch)
	if err != nil {
		return nil, t.afterFailure(ctx, err)
	}
	return updated, t.afterMutation(ctx)
}

// Delete removes one entry
func (t *Tracker) Delete(ctx context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.entries.Delete(ctx, id); err != nil {
		return t.afterFailure(ctx, err)
	}
	return t.afterMutation(ctx)
}

// Resume starts a new entry copying an existing one's task and project
func (t *Tracker) Resume(ctx context.Context, id int64) (*services.StartResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	result, err := t.entries.Resume(ctx, id)
	if err != nil {
		return nil, t.afterFailure(ctx, err)
	}
	return result, t.afterMutation(ctx)
}

// DeleteSelected deletes every selected entry. The selection is cleared once
// the batch has run, whatever its per-entry outcome.
func (t *Tracker) DeleteSelected(ctx context.Context) (services.BatchResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.selectedIDsLocked()
	result := t.entries.DeleteMany(ctx, ids)
	t.selection.Clear()
	return result, t.afterMutation(ctx)
}

// SetSelectedLogged sets the logged flag on every selected entry and then
// clears the selection.
func (t *Tracker) SetSelectedLogged(ctx context.Context, logged bool) (services.BatchResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.selectedIDsLocked()
	result := t.entries.SetLoggedMany(ctx, ids, logged)
	t.selection.Clear()
	return result, t.afterMutation(ctx)
}

func (t *Tracker) selectedIDsLocked() []int64 {
	selected := t.selection.Selected(t.engine.Entries())
	ids := make([]int64, 0, len(selected))
	for _, e := range selected {
		ids = append(ids, e.ID)
	}
	return ids
}
