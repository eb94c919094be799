// Package export writes time entries as CSV, JSON, YAML or iCalendar.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"chronii/internal/domain"
	"chronii/internal/errors"
)

// Format names an export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// Formats lists the supported formats in help order
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML, FormatICS}
}

// ParseFormat resolves a user supplied format name
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "yml" {
		name = string(FormatYAML)
	}
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.NewInvalidInputError("format", s, "unsupported format, expected one of csv, json, yaml, ics")
}

// entryNamespace seeds the name-based UUIDs used as calendar UIDs
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://chronii.app/entries"))

// EntryUID returns a UID that stays the same across exports of one entry
func EntryUID(e domain.TimeEntry) string {
	name := fmt.Sprintf("%d/%d", e.ID, e.StartTime.UnixMilli())
	return uuid.NewSHA1(entryNamespace, []byte(name)).String()
}

// Record is the serialised shape of an entry
type Record struct {
	ID              int64      `json:"id" yaml:"id"`
	Task            string     `json:"task" yaml:"task"`
	Project         *string    `json:"project,omitempty" yaml:"project,omitempty"`
	Start           time.Time  `json:"start" yaml:"start"`
	End             *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	DurationSeconds int64      `json:"duration_seconds" yaml:"duration_seconds"`
	Running         bool       `json:"running" yaml:"running"`
	Logged          bool       `json:"logged" yaml:"logged"`
}

// Document is the top level of JSON and YAML exports
type Document struct {
	ExportedAt   time.Time `json:"exported_at" yaml:"exported_at"`
	TotalSeconds int64     `json:"total_seconds" yaml:"total_seconds"`
	Entries      []Record  `json:"entries" yaml:"entries"`
}

// NewDocument converts entries, measuring open ones against now
func NewDocument(entries []domain.TimeEntry, now time.Time) Document {
	doc := Document{ExportedAt: now, Entries: make([]Record, 0, len(entries))}
	for _, e := range entries {
		d := domain.DisplayDuration(e.Duration(now))
		doc.TotalSeconds += int64(d / time.Second)
		doc.Entries = append(doc.Entries, Record{
			ID:              e.ID,
			Task:            e.TaskName,
			Project:         e.Project,
			Start:           e.StartTime,
			End:             e.EndTime,
			DurationSeconds: int64(d / time.Second),
			Running:         e.IsOpen(),
			Logged:          e.Logged,
		})
	}
	return doc
}

// Write encodes entries to w in the given format
func Write(w io.Writer, format Format, entries []domain.TimeEntry, now time.Time) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, entries, now)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(entries, now))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(entries, now)); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatICS:
		return writeICS(w, entries, now)
	default:
		return errors.NewInvalidInputError("format", string(format), "unsupported format")
	}
}

var csvHeader = []string{"ID", "Start Time", "End Time", "Duration (hours)", "Task Name", "Project", "Logged"}

func writeCSV(w io.Writer, entries []domain.TimeEntry, now time.Time) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		var endTime string
		if e.EndTime != nil {
			endTime = e.EndTime.Format(time.RFC3339)
		}
		hours := domain.DisplayDuration(e.Duration(now)).Hours()

		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.StartTime.Format(time.RFC3339),
			endTime,
			fmt.Sprintf("%.2f", hours),
			e.TaskName,
			e.ProjectName(),
			strconv.FormatBool(e.Logged),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeICS emits one VEVENT per entry. Running entries end at now.
func writeICS(w io.Writer, entries []domain.TimeEntry, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//chronii//chronii//EN")

	stamp := now.UTC()
	for _, e := range entries {
		end := now
		if e.EndTime != nil {
			end = *e.EndTime
		}
		if end.Before(e.StartTime) {
			end = e.StartTime
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, EntryUID(e))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, e.StartTime.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
		event.Props.SetText(ical.PropSummary, e.TaskName)
		if e.HasProject() {
			event.Props.SetText(ical.PropCategories, *e.Project)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
