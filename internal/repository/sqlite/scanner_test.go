package sqlite

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanner implements the Scanner interface for testing
type TestScanner struct {
	data []interface{}
	err  error
}

func (ts *TestScanner) Scan(dest ...interface{}) error {
	if ts.err != nil {
		return ts.err
	}
	return assign(dest, ts.data)
}

func assign(dest []interface{}, data []interface{}) error {
	if len(dest) != len(data) {
		return errors.New("mismatch in number of destinations")
	}

	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = data[i].(int64)
		case *string:
			*v = data[i].(string)
		case *sql.NullString:
			*v = data[i].(sql.NullString)
		case *sql.NullInt64:
			*v = data[i].(sql.NullInt64)
		}
	}
	return nil
}

var (
	scanStart = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	scanEnd   = time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
)

func rowData(id int64, name string, project sql.NullString, end sql.NullInt64, logged int64) []interface{} {
	return []interface{}{
		id,
		name,
		project,
		ToMillis(scanStart),
		end,
		ToMillis(scanStart),
		ToMillis(scanStart),
		logged,
	}
}

func TestScanTimeEntry(t *testing.T) {
	t.Run("closed entry with project", func(t *testing.T) {
		scanner := &TestScanner{data: rowData(1, "Write report",
			sql.NullString{String: "acme", Valid: true},
			sql.NullInt64{Int64: ToMillis(scanEnd), Valid: true}, 1)}

		entry, err := ScanTimeEntry(scanner)

		require.NoError(t, err)
		assert.Equal(t, int64(1), entry.ID)
		assert.Equal(t, "Write report", entry.TaskName)
		assert.Equal(t, "acme", entry.ProjectName())
		assert.True(t, scanStart.Equal(entry.StartTime))
		require.NotNil(t, entry.EndTime)
		assert.True(t, scanEnd.Equal(*entry.EndTime))
		assert.True(t, entry.Logged)
	})

	t.Run("running entry without project", func(t *testing.T) {
		scanner := &TestScanner{data: rowData(2, "Review", sql.NullString{}, sql.NullInt64{}, 0)}

		entry, err := ScanTimeEntry(scanner)

		require.NoError(t, err)
		assert.Nil(t, entry.Project)
		assert.Nil(t, entry.EndTime)
		assert.True(t, entry.IsOpen())
		assert.False(t, entry.Logged)
	})

	t.Run("scan error", func(t *testing.T) {
		scanner := &TestScanner{err: sql.ErrNoRows}

		entry, err := ScanTimeEntry(scanner)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, entry)
	})
}

// TestRows implements the Rows interface for testing
type TestRows struct {
	rows       [][]interface{}
	currentRow int
	err        error
}

func (tr *TestRows) Next() bool {
	if tr.err != nil {
		return false
	}
	if tr.currentRow >= len(tr.rows) {
		return false
	}
	tr.currentRow++
	return true
}

func (tr *TestRows) Scan(dest ...interface{}) error {
	if tr.currentRow == 0 || tr.currentRow > len(tr.rows) {
		return errors.New("no current row")
	}
	return assign(dest, tr.rows[tr.currentRow-1])
}

func (tr *TestRows) Err() error {
	return tr.err
}

func TestScanTimeEntries(t *testing.T) {
	tests := []struct {
		name        string
		rows        *TestRows
		expectedIDs []int64
		expectError bool
	}{
		{
			name: "multiple rows",
			rows: &TestRows{rows: [][]interface{}{
				rowData(3, "a", sql.NullString{}, sql.NullInt64{}, 0),
				rowData(1, "b", sql.NullString{}, sql.NullInt64{Int64: ToMillis(scanEnd), Valid: true}, 0),
			}},
			expectedIDs: []int64{3, 1},
		},
		{
			name:        "empty result is an empty slice",
			rows:        &TestRows{},
			expectedIDs: []int64{},
		},
		{
			name:        "iteration error",
			rows:        &TestRows{err: errors.New("disk I/O error")},
			expectError: true,
		},
		{
			name: "row with wrong column count",
			rows: &TestRows{rows: [][]interface{}{
				{int64(1), "a"},
			}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ScanTimeEntries(tt.rows)
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			ids := []int64{}
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestScanProjectNames(t *testing.T) {
	rows := &TestRows{rows: [][]interface{}{{"acme"}, {"internal"}}}

	names, err := ScanProjectNames(rows)

	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "internal"}, names)
}
