package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"chronii/internal/logging"
)

func init() {
	RegisterGoMigration(3, Up_000003_normalize_names, Down_000003_normalize_names)
}

// Up_000003_normalize_names rewrites task and project names to trimmed NFC
// form so that project filters and renames match byte-for-byte. Blank
// project labels become NULL ("no project").
func Up_000003_normalize_names(ctx context.Context, tx *sql.Tx) error {
	// Read all rows into memory first to avoid locking issues
	type entry struct {
		id       int64
		taskName string
		project  sql.NullString
	}
	var entries []entry

	rows, err := tx.QueryContext(ctx, "SELECT id, task_name, project FROM time_entries")
	if err != nil {
		return fmt.Errorf("failed to query time entries: %w", err)
	}
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.taskName, &e.project); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan row %d: %w", e.id, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating time entries: %w", err)
	}
	rows.Close()

	stmt, err := tx.PrepareContext(ctx, "UPDATE time_entries SET task_name = ?, project = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	updates := 0
	for _, e := range entries {
		name := normalizeName(e.taskName)
		var project interface{}
		if e.project.Valid {
			if p := normalizeName(e.project.String); p != "" {
				project = p
			}
		}

		unchanged := name == e.taskName &&
			((project == nil && !e.project.Valid) || (project != nil && e.project.Valid && project == e.project.String))
		if unchanged {
			continue
		}

		if _, err := stmt.ExecContext(ctx, name, project, e.id); err != nil {
			return fmt.Errorf("failed to update names for id %d: %w", e.id, err)
		}
		updates++
	}

	logging.Debugf("normalize names: processed %d rows, updated %d", len(entries), updates)
	return nil
}

// Down_000003_normalize_names is a no-op; the original byte forms are not kept.
func Down_000003_normalize_names(ctx context.Context, tx *sql.Tx) error {
	return nil
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
