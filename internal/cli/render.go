package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"chronii/internal/aggregation"
	"chronii/internal/config"
	"chronii/internal/domain"
	"chronii/internal/services"
)

// Renderer turns views and reports into terminal text. With colour off it
// emits plain text only.
type Renderer struct {
	timeFormat string
	running    string
	color      bool
}

// NewRenderer creates a renderer from the display settings
func NewRenderer(display config.DisplayConfig) *Renderer {
	return &Renderer{
		timeFormat: display.TimeFormat,
		running:    display.RunningStatus,
		color:      display.Color,
	}
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// Clock formats a time of day with the configured layout
func (r *Renderer) Clock(t time.Time) string {
	return t.Format(r.timeFormat)
}

// ProjectSuffix renders " (project)", or nothing for entries without one
func (r *Renderer) ProjectSuffix(project *string) string {
	if project == nil {
		return ""
	}
	return " (" + *project + ")"
}

func (r *Renderer) span(e domain.TimeEntry) string {
	end := r.paint(runningStyle, r.running)
	if e.EndTime != nil {
		end = r.Clock(*e.EndTime)
	}
	return r.Clock(e.StartTime) + " – " + end
}

// EntrySummary renders an entry on one line:
// "#3 Write report (acme), 09:00 – 10:00 (1h 0m 0s)"
func (r *Renderer) EntrySummary(e domain.TimeEntry, now time.Time) string {
	return fmt.Sprintf("#%d %s%s, %s (%s)",
		e.ID, e.TaskName, r.ProjectSuffix(e.Project), r.span(e), aggregation.FormatDuration(e.Duration(now)))
}

// entryLine is one row of the history listing
func (r *Renderer) entryLine(e domain.TimeEntry, now time.Time) string {
	line := fmt.Sprintf("#%d  %s  %s  %s%s",
		e.ID, r.span(e), aggregation.FormatDuration(e.Duration(now)), e.TaskName, r.paint(dimStyle, r.ProjectSuffix(e.Project)))
	if e.Logged {
		line += r.paint(dimStyle, " [logged]")
	}
	return line
}

// HistoryOptions decorates the history listing for interactive use
type HistoryOptions struct {
	// Marker returns a fixed-width prefix for an entry row
	Marker func(e domain.TimeEntry) string
}

// History renders a grouped view: weeks, then days, then entries
func (r *Renderer) History(view aggregation.View, opts HistoryOptions) string {
	if view.Len() == 0 {
		return "No entries found\n"
	}

	var b strings.Builder
	for i, week := range view.Weeks {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n", r.paint(weekStyle, week.Label), aggregation.FormatTotal(week.Total))
		for _, day := range week.Days {
			fmt.Fprintf(&b, "  %s  %s\n", r.paint(dayStyle, day.Label), aggregation.FormatTotal(day.Total))
			for _, e := range day.Entries {
				prefix := "    "
				if opts.Marker != nil {
					prefix = opts.Marker(e)
				}
				b.WriteString(prefix + r.entryLine(e, view.Now) + "\n")
			}
		}
	}
	fmt.Fprintf(&b, "\n%s  %s\n", r.paint(totalStyle, "Total"), aggregation.FormatTotal(view.Total))
	return b.String()
}

// Status renders the running entry and the today/week/month totals
func (r *Renderer) Status(summary aggregation.Summary) string {
	var b strings.Builder
	if running := summary.Running; running != nil {
		fmt.Fprintf(&b, "%s #%d %s%s\n", r.paint(runningStyle, "Running:"), running.ID, running.TaskName, r.ProjectSuffix(running.Project))
		fmt.Fprintf(&b, "  started %s at %s (%s)\n",
			humanize.RelTime(running.StartTime, summary.Now, "ago", "from now"),
			r.Clock(running.StartTime),
			aggregation.FormatTimer(running.Duration(summary.Now)))
	} else {
		b.WriteString(r.paint(dimStyle, "Nothing running") + "\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%-6s %s\n", "Today", aggregation.FormatTotal(summary.Today))
	fmt.Fprintf(&b, "%-6s %s\n", "Week", aggregation.FormatTotal(summary.Week))
	fmt.Fprintf(&b, "%-6s %s\n", "Month", aggregation.FormatTotal(summary.Month))
	return b.String()
}

// Report renders a range report with per-project totals
func (r *Renderer) Report(report *services.RangeReport) string {
	var b strings.Builder
	const layout = "Jan 2, 2006 15:04"
	fmt.Fprintf(&b, "%s – %s\n", report.Range.Start.Format(layout), report.Range.End.Format(layout))

	if report.View.Len() == 0 {
		b.WriteString("No entries found\n")
		return b.String()
	}

	b.WriteString("\n")
	for _, p := range report.ByProject {
		name := p.Name
		if name == "" {
			name = domain.ProjectLabel(nil)
		}
		fmt.Fprintf(&b, "%-20s %8s  %s\n", name, aggregation.FormatTotal(p.Total), entryCount(p.Count))
	}
	fmt.Fprintf(&b, "\n%s  %s\n", r.paint(totalStyle, "Total"), aggregation.FormatTotal(report.View.Total))
	return b.String()
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
