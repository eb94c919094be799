package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Repository defines the interface for database operations
type Repository interface {
	// Time entries
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

	// Project directory
	CreateProject(ctx context.Context, name string) error
	ListProjects(ctx context.Context) ([]string, error)
	CountByProject(ctx context.Context, project *string) (int, error)
	DeleteProject(ctx context.Context, project *string) (int64, error)
	RenameProject(ctx context.Context, oldName, newName string) (int64, error)

	// Utility
	Close() error
}

// Options tunes a repository. Zero values fall back to defaults.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	Clock        clockwork.Clock
}

const (
	defaultQueryTimeout = 10 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
	writeTimeout time.Duration
	clock        clockwork.Clock
}

// New creates a new SQLite repository instance with default options
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates a new SQLite repository instance
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	if dbPath == MemoryPath {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.WriteTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewStorageError("open database", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return &SQLiteRepository{
		db:           db,
		queryTimeout: opts.QueryTimeout,
		writeTimeout: opts.WriteTimeout,
		clock:        opts.Clock,
	}, nil
}

func dsn(dbPath string) string {
	if dbPath == MemoryPath {
		return dbPath
	}
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

func (r *SQLiteRepository) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.writeTimeout)
}

func (r *SQLiteRepository) nowMillis() int64 {
	return ToMillis(r.clock.Now())
}

// CreateEntry inserts a new open time entry and returns the stored row
func (r *SQLiteRepository) CreateEntry(ctx context.Context, taskName string, startTime time.Time, project *string) (*domain.TimeEntry, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `
	INSERT INTO time_entries (task_name, project, start_time, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`

	now := r.nowMillis()
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, taskName, nullableString(project), ToMillis(startTime), now, now)
	if err != nil {
		return nil, err
	}

	return r.getEntry(ctx, id)
}

// GetEntry retrieves a time entry by ID, or nil when it does not exist
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()
	return r.getEntry(ctx, id)
}

func (r *SQLiteRepository) getEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	return getEntryWith(ctx, r.db, id)
}

func getEntryWith(ctx context.Context, db execer, id int64) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = ?`
	return QuerySingle(ctx, db, query, ScanTimeEntry, "time entry", id)
}

// StopEntry sets the end time of an open entry. A closed entry is returned unchanged.
func (r *SQLiteRepository) StopEntry(ctx context.Context, id int64, endTime time.Time) (*domain.TimeEntry, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `
	UPDATE time_entries
	SET end_time = ?, updated_at = ?
	WHERE id = ? AND end_time IS NULL`

	if _, err := ExecuteWithRowsAffected(ctx, r.db, query, ToMillis(endTime), r.nowMillis(), id); err != nil {
		return nil, err
	}
	return r.getEntry(ctx, id)
}

// StartEntry stops every open entry at startTime and inserts a new open
// entry, in one transaction. It returns the new entry and the stopped ones.
func (r *SQLiteRepository) StartEntry(ctx context.Context, taskName string, startTime time.Time, project *string) (*domain.TimeEntry, []domain.TimeEntry, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	var (
		entry   *domain.TimeEntry
		stopped []domain.TimeEntry
	)
	err := r.inTx(ctx, "start entry", func(tx *sql.Tx) error {
		var err error
		if stopped, err = r.stopOpen(ctx, tx, startTime); err != nil {
			return err
		}

		now := r.nowMillis()
		id, err := ExecuteWithLastInsertID(ctx, tx, `
		INSERT INTO time_entries (task_name, project, start_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
			taskName, nullableString(project), ToMillis(startTime), now, now)
		if err != nil {
			return err
		}
		entry, err = getEntryWith(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, stopped, nil
}

// StopOpenEntries stops every open entry at endTime in one transaction and
// returns them, newest first
func (r *SQLiteRepository) StopOpenEntries(ctx context.Context, endTime time.Time) ([]domain.TimeEntry, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	var stopped []domain.TimeEntry
	err := r.inTx(ctx, "stop open entries", func(tx *sql.Tx) error {
		var err error
		stopped, err = r.stopOpen(ctx, tx, endTime)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stopped, nil
}

// stopOpen closes the open entries inside tx. An entry that starts after
// endTime is closed at its own start.
func (r *SQLiteRepository) stopOpen(ctx context.Context, tx *sql.Tx, endTime time.Time) ([]domain.TimeEntry, error) {
	open, err := QueryMultiple(ctx, tx, `
	SELECT `+entryColumns+`
	FROM time_entries
	WHERE end_time IS NULL
	ORDER BY start_time DESC, id DESC`, ScanTimeEntries, "time entries")
	if err != nil || len(open) == 0 {
		return nil, err
	}

	now := r.clock.Now()
	if _, err := ExecuteWithRowsAffected(ctx, tx, `
	UPDATE time_entries
	SET end_time = MAX(start_time, ?), updated_at = ?
	WHERE end_time IS NULL`, ToMillis(endTime), ToMillis(now)); err != nil {
		return nil, err
	}

	stopped := make([]domain.TimeEntry, 0, len(open))
	for _, e := range open {
		closed := e.Stop(FromMillis(ToMillis(e.StopTime(endTime))))
		closed.UpdatedAt = FromMillis(ToMillis(now))
		stopped = append(stopped, closed)
	}
	return stopped, nil
}

// GetActiveEntry returns the most recently started open entry, or nil
func (r *SQLiteRepository) GetActiveEntry(ctx context.Context) (*domain.TimeEntry, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `
	SELECT ` + entryColumns + `
	FROM time_entries
	WHERE end_time IS NULL
	ORDER BY start_time DESC, id DESC
	LIMIT 1`

	return QuerySingle(ctx, r.db, query, ScanTimeEntry, "time entry")
}

// ListEntries returns entries newest first. A non-positive limit returns every row.
func (r *SQLiteRepository) ListEntries(ctx context.Context, limit, offset int, filter domain.ProjectFilter) ([]domain.TimeEntry, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	var args []interface{}
	query := `SELECT ` + entryColumns + ` FROM time_entries`

	switch filter.Kind {
	case domain.FilterNone:
		query += ` WHERE project IS NULL`
	case domain.FilterNamed:
		query += ` WHERE project = ?`
		args = append(args, filter.Name)
	}

	query += ` ORDER BY start_time DESC, id DESC`
	switch {
	case limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	case offset > 0:
		// SQLite takes a negative limit as no limit
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, offset)
	}

	return QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries", args...)
}

// UpdateEntry applies the provided patch fields. Returns nil when the entry does not exist.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id int64, patch domain.EntryPatch) (*domain.TimeEntry, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	if patch.IsEmpty() {
		return r.getEntry(ctx, id)
	}

	var fields []string
	var args []interface{}

	if patch.TaskName != nil {
		fields = append(fields, "task_name = ?")
		args = append(args, *patch.TaskName)
	}
	if patch.Project.IsSet() {
		fields = append(fields, "project = ?")
		args = append(args, nullableString(patch.Project.Value()))
	}
	if patch.StartTime != nil {
		fields = append(fields, "start_time = ?")
		args = append(args, ToMillis(*patch.StartTime))
	}
	if patch.EndTime.IsSet() {
		fields = append(fields, "end_time = ?")
		args = append(args, ToMillisPtr(patch.EndTime.Value()))
	}
	if patch.Logged != nil {
		fields = append(fields, "logged = ?")
		args = append(args, boolToInt(*patch.Logged))
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, r.nowMillis(), id)

	query := `UPDATE time_entries SET ` + strings.Join(fields, ", ") + ` WHERE id = ?`
	changed, err := ExecuteWithRowsAffected(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	if changed == 0 {
		return nil, nil
	}

	return r.getEntry(ctx, id)
}

// DeleteEntry deletes a time entry by ID and reports whether a row was removed
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	changed, err := ExecuteWithRowsAffected(ctx, r.db, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return changed > 0, nil
}

// ListEntriesInRange returns entries whose start lies in [start, end], newest first
func (r *SQLiteRepository) ListEntriesInRange(ctx context.Context, start, end time.Time) ([]domain.TimeEntry, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `
	SELECT ` + entryColumns + `
	FROM time_entries
	WHERE start_time >= ? AND start_time <= ?
	ORDER BY start_time DESC, id DESC`

	return QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries", ToMillis(start), ToMillis(end))
}

// CreateProject declares a project so it is listed before it has entries
func (r *SQLiteRepository) CreateProject(ctx context.Context, name string) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	_, err := ExecuteWithRowsAffected(ctx, r.db, `INSERT OR IGNORE INTO projects (name, created_at) VALUES (?, ?)`, name, r.nowMillis())
	return err
}

// ListProjects returns declared projects and projects referenced by entries, sorted
func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]string, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `
	SELECT name FROM projects
	UNION
	SELECT project FROM time_entries WHERE project IS NOT NULL
	ORDER BY 1 ASC`

	return QueryMultiple(ctx, r.db, query, ScanProjectNames, "projects")
}

// CountByProject counts entries in a project; nil counts entries without one
func (r *SQLiteRepository) CountByProject(ctx context.Context, project *string) (int, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	if project == nil {
		return QueryCount(ctx, r.db, `SELECT COUNT(*) FROM time_entries WHERE project IS NULL`)
	}
	return QueryCount(ctx, r.db, `SELECT COUNT(*) FROM time_entries WHERE project = ?`, *project)
}

// DeleteProject removes every entry of a project and its declaration.
// Returns the number of entries removed.
func (r *SQLiteRepository) DeleteProject(ctx context.Context, project *string) (int64, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	var removed int64
	err := r.inTx(ctx, "delete project", func(tx *sql.Tx) error {
		var err error
		if project == nil {
			removed, err = ExecuteWithRowsAffected(ctx, tx, `DELETE FROM time_entries WHERE project IS NULL`)
			return err
		}
		if removed, err = ExecuteWithRowsAffected(ctx, tx, `DELETE FROM time_entries WHERE project = ?`, *project); err != nil {
			return err
		}
		_, err = ExecuteWithRowsAffected(ctx, tx, `DELETE FROM projects WHERE name = ?`, *project)
		return err
	})
	return removed, err
}

// RenameProject moves every entry of oldName to newName and renames the
// declaration. Returns the number of entries updated.
func (r *SQLiteRepository) RenameProject(ctx context.Context, oldName, newName string) (int64, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	var updated int64
	err := r.inTx(ctx, "rename project", func(tx *sql.Tx) error {
		var err error
		updated, err = ExecuteWithRowsAffected(ctx, tx,
			`UPDATE time_entries SET project = ?, updated_at = ? WHERE project = ?`,
			newName, r.nowMillis(), oldName)
		if err != nil {
			return err
		}
		if _, err = ExecuteWithRowsAffected(ctx, tx,
			`INSERT OR IGNORE INTO projects (name, created_at) SELECT ?, created_at FROM projects WHERE name = ?`,
			newName, oldName); err != nil {
			return err
		}
		_, err = ExecuteWithRowsAffected(ctx, tx, `DELETE FROM projects WHERE name = ?`, oldName)
		return err
	})
	return updated, err
}

func (r *SQLiteRepository) inTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleStorageError(operation, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return HandleStorageError(operation, err)
	}
	return nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
