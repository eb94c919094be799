package services

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/logging"
	"chronii/internal/validation"
)

// entryServiceImpl implements the EntryService interface
type entryServiceImpl struct {
	store     Store
	clock     clockwork.Clock
	validator *validation.EntryValidator
}

// NewEntryService creates a new EntryService instance
func NewEntryService(store Store, clock clockwork.Clock, validator *validation.EntryValidator) EntryService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validator == nil {
		validator = validation.NewEntryValidator()
	}
	return &entryServiceImpl{
		store:     store,
		clock:     clock,
		validator: validator,
	}
}

func (s *entryServiceImpl) validateID(id int64) error {
	if err := s.validator.ValidateEntryID(id); err != nil {
		return errors.NewValidationError("invalid entry ID", err)
	}
	return nil
}

func (s *entryServiceImpl) mustGet(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	if err := s.validateID(id); err != nil {
		return nil, err
	}
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.NewNotFoundError("time entry", fmt.Sprint(id))
	}
	return entry, nil
}

// Start stops any running entry and opens a new one at the current time
func (s *entryServiceImpl) Start(ctx context.Context, taskName string, project *string) (*StartResult, error) {
	name, err := s.validator.CleanTaskName(taskName)
	if err != nil {
		return nil, errors.NewValidationError("invalid task name", err)
	}
	cleanedProject, err := s.validator.CleanProjectName(project)
	if err != nil {
		return nil, errors.NewValidationError("invalid project name", err)
	}

	// The stop of the running entry and the insert commit together.
	entry, stopped, err := s.store.StartEntry(ctx, name, s.clock.Now(), cleanedProject)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("started entry", "id", entry.ID, "task", entry.TaskName, "stopped", len(stopped))

	return &StartResult{Entry: *entry, Stopped: stopped}, nil
}

// Stop closes the entry if it is open. Stopping a closed entry is reported, not an error.
func (s *entryServiceImpl) Stop(ctx context.Context, id int64) (*StopResult, error) {
	entry, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.IsOpen() {
		return &StopResult{Entry: *entry, AlreadyStopped: true}, nil
	}

	closed, err := s.store.StopEntry(ctx, id, entry.StopTime(s.clock.Now()))
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, errors.NewNotFoundError("time entry", fmt.Sprint(id))
	}
	logging.Logger().Debug("stopped entry", "id", closed.ID, "task", closed.TaskName)
	return &StopResult{Entry: *closed}, nil
}

// StopActive stops every running entry and returns them. No running entry is not an error.
func (s *entryServiceImpl) StopActive(ctx context.Context) ([]domain.TimeEntry, error) {
	stopped, err := s.store.StopOpenEntries(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	for _, e := range stopped {
		logging.Logger().Debug("stopped entry", "id", e.ID, "task", e.TaskName)
	}
	return stopped, nil
}

// Edit applies the patch all-or-nothing. The merged entry is validated
// before anything is written; clearing EndTime reopens the entry.
func (s *entryServiceImpl) Edit(ctx context.Context, id int64, patch domain.EntryPatch) (*domain.TimeEntry, error) {
	if err := s.validateID(id); err != nil {
		return nil, err
	}
	cleaned, err := s.validator.CleanPatch(patch)
	if err != nil {
		return nil, errors.NewValidationError("invalid entry update", err)
	}

	current, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if cleaned.IsEmpty() {
		return current, nil
	}

	if err := s.validator.ValidateEntry(current.Apply(cleaned)); err != nil {
		return nil, errors.NewValidationError("invalid entry update", err)
	}

	updated, err := s.store.UpdateEntry(ctx, id, cleaned)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewNotFoundError("time entry", fmt.Sprint(id))
	}
	logging.Logger().Debug("edited entry", "id", id)
	return updated, nil
}

// Delete removes an entry. A running entry stops by being removed; the row
// goes in a single statement so it is never left stopped but not deleted.
func (s *entryServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}

	deleted, err := s.store.DeleteEntry(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewNotFoundError("time entry", fmt.Sprint(id))
	}
	logging.Logger().Debug("deleted entry", "id", id)
	return nil
}

// DeleteMany deletes each ID independently and reports per-ID outcomes
func (s *entryServiceImpl) DeleteMany(ctx context.Context, ids []int64) BatchResult {
	result := BatchResult{Items: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		result.Items = append(result.Items, ItemResult{ID: id, Err: s.Delete(ctx, id)})
	}
	return result
}

// SetLoggedMany sets the logged flag on each ID independently
func (s *entryServiceImpl) SetLoggedMany(ctx context.Context, ids []int64, logged bool) BatchResult {
	result := BatchResult{Items: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		_, err := s.Edit(ctx, id, domain.EntryPatch{Logged: &logged})
		result.Items = append(result.Items, ItemResult{ID: id, Err: err})
	}
	return result
}

// Resume starts a new entry with the task name and project of an existing one
func (s *entryServiceImpl) Resume(ctx context.Context, id int64) (*StartResult, error) {
	entry, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Start(ctx, entry.TaskName, entry.Project)
}

// Get retrieves an entry by ID
func (s *entryServiceImpl) Get(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	return s.mustGet(ctx, id)
}

// Active returns the most recently started running entry, or nil
func (s *entryServiceImpl) Active(ctx context.Context) (*domain.TimeEntry, error) {
	return s.store.GetActiveEntry(ctx)
}

// List returns a page of the history, newest first
func (s *entryServiceImpl) List(ctx context.Context, opts ListOptions) ([]domain.TimeEntry, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, errors.NewInvalidInputError("limit", opts.Limit, "limit and offset must not be negative")
	}
	if opts.Filter.Kind == domain.FilterNamed {
		name, err := s.validator.RequireProjectName(opts.Filter.Name)
		if err != nil {
			return nil, errors.NewValidationError("invalid project filter", err)
		}
		opts.Filter = domain.NamedProject(name)
	}
	return s.store.ListEntries(ctx, opts.Limit, opts.Offset, opts.Filter)
}
