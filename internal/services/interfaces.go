package services

import (
	"context"
	"time"

	"chronii/internal/aggregation"
	"chronii/internal/domain"
)

// Store is the storage collaborator. Lookups return (nil, nil) when the row
// does not exist; failures are *errors.AppError storage errors.
type Store interface {
	CreateEntry(ctx context.Context, taskName string, startTime time.Time, project *string) (*domain.TimeEntry, error)
	GetEntry(ctx context.Context, id int64) (*domain.TimeEntry, error)
	StopEntry(ctx context.Context, id int64, endTime time.Time) (*domain.TimeEntry, error)
	GetActiveEntry(ctx context.Context) (*domain.TimeEntry, error)
	StartEntry(ctx context.Context, taskName string, startTime time.Time, project *string) (*domain.TimeEntry, []domain.TimeEntry, error)
	StopOpenEntries(ctx context.Context, endTime time.Time) ([]domain.TimeEntry, error)
	ListEntries(ctx context.Context, limit, offset int, filter domain.ProjectFilter) ([]domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, id int64, patch domain.EntryPatch) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, id int64) (bool, error)
	ListEntriesInRange(ctx context.Context, start, end time.Time) ([]domain.TimeEntry, error)

	CreateProject(ctx context.Context, name string) error
	ListProjects(ctx context.Context) ([]string, error)
	CountByProject(ctx context.Context, project *string) (int, error)
	DeleteProject(ctx context.Context, project *string) (int64, error)
	RenameProject(ctx context.Context, oldName, newName string) (int64, error)
}

// TimeRange represents a time period with start and end times
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ListOptions pages through the history
type ListOptions struct {
	Limit  int
	Offset int
	Filter domain.ProjectFilter
}

// StartResult reports the entry a start created and any entries it had to stop first
type StartResult struct {
	Entry   domain.TimeEntry
	Stopped []domain.TimeEntry
}

// StopResult reports the outcome of stopping one entry
type StopResult struct {
	Entry domain.TimeEntry
	// AlreadyStopped is set when the entry was closed before the call; Entry is unchanged.
	AlreadyStopped bool
}

// ItemResult is the outcome of a batch operation for one ID
type ItemResult struct {
	ID  int64
	Err error
}

// BatchResult collects per-ID outcomes. A batch never aborts on the first failure.
type BatchResult struct {
	Items []ItemResult
}

// Succeeded returns the IDs that were processed without error
func (b BatchResult) Succeeded() []int64 {
	ids := make([]int64, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Err == nil {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Failed returns the items that failed
func (b BatchResult) Failed() []ItemResult {
	var failed []ItemResult
	for _, item := range b.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// OK reports whether every item succeeded
func (b BatchResult) OK() bool {
	return len(b.Failed()) == 0
}

// RangeReport aggregates the entries that started inside a range
type RangeReport struct {
	Range     TimeRange
	View      aggregation.View
	ByProject []ProjectTotal
}

// ProjectTotal is one project's share of a report. Name is empty for entries without a project.
type ProjectTotal struct {
	Name  string
	Total time.Duration
	Count int
}

// EntryService is the only path that changes time entries
type EntryService interface {
	// Mutations
	Start(ctx context.Context, taskName string, project *string) (*StartResult, error)
	Stop(ctx context.Context, id int64) (*StopResult, error)
	StopActive(ctx context.Context) ([]domain.TimeEntry, error)
	Edit(ctx context.Context, id int64, patch domain.EntryPatch) (*domain.TimeEntry, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) BatchResult
	SetLoggedMany(ctx context.Context, ids []int64, logged bool) BatchResult
	Resume(ctx context.Context, id int64) (*StartResult, error)

	// Reads
	Get(ctx context.Context, id int64) (*domain.TimeEntry, error)
	Active(ctx context.Context) (*domain.TimeEntry, error)
	List(ctx context.Context, opts ListOptions) ([]domain.TimeEntry, error)
}

// ProjectService manages the project directory
type ProjectService interface {
	Create(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]domain.Project, error)
	Count(ctx context.Context, project *string) (int, error)
	Delete(ctx context.Context, project *string) (int64, error)
	Rename(ctx context.Context, oldName, newName string) (int64, error)
}

// ReportingService handles totals over periods
type ReportingService interface {
	Summary(ctx context.Context) (*aggregation.Summary, error)
	Range(ctx context.Context, start, end time.Time) (*RangeReport, error)
	ParseTimeRange(shorthand string) (*TimeRange, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	EntryService     EntryService
	ProjectService   ProjectService
	ReportingService ReportingService
}
