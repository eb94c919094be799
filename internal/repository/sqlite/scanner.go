package sqlite

import (
	"database/sql"

	"chronii/internal/domain"
)

// entryColumns is the column list every time entry query selects, in scan order.
const entryColumns = `id, task_name, project, start_time, end_time, created_at, updated_at, logged`

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// entryRow is the storage shape of a time entry: instants as integer
// milliseconds, nullable columns as sql.Null* values.
type entryRow struct {
	ID        int64
	TaskName  string
	Project   sql.NullString
	StartTime int64
	EndTime   sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
	Logged    int64
}

func (r entryRow) toDomain() domain.TimeEntry {
	entry := domain.TimeEntry{
		ID:        r.ID,
		TaskName:  r.TaskName,
		StartTime: FromMillis(r.StartTime),
		CreatedAt: FromMillis(r.CreatedAt),
		UpdatedAt: FromMillis(r.UpdatedAt),
		Logged:    r.Logged != 0,
	}
	if r.Project.Valid {
		p := r.Project.String
		entry.Project = &p
	}
	if r.EndTime.Valid {
		end := FromMillis(r.EndTime.Int64)
		entry.EndTime = &end
	}
	return entry
}

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*domain.TimeEntry, error) {
	var row entryRow
	err := scanner.Scan(
		&row.ID,
		&row.TaskName,
		&row.Project,
		&row.StartTime,
		&row.EndTime,
		&row.CreatedAt,
		&row.UpdatedAt,
		&row.Logged,
	)
	if err != nil {
		return nil, err
	}

	entry := row.toDomain()
	return &entry, nil
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]domain.TimeEntry, error) {
	entries := []domain.TimeEntry{}
	for rows.Next() {
		entry, err := ScanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ScanProjectNames scans a single-column list of project names
func ScanProjectNames(rows Rows) ([]string, error) {
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
