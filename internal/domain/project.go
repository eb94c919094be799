package domain

// ProjectFilterKind selects which entries a ProjectFilter admits.
type ProjectFilterKind int

const (
	// FilterAll admits every entry.
	FilterAll ProjectFilterKind = iota
	// FilterNone admits only entries without a project.
	FilterNone
	// FilterNamed admits entries of one named project.
	FilterNamed
)

// ProjectFilter restricts a listing to a project bucket.
type ProjectFilter struct {
	Kind ProjectFilterKind
	Name string
}

// AllProjects returns a filter that admits every entry.
func AllProjects() ProjectFilter {
	return ProjectFilter{Kind: FilterAll}
}

// NoProject returns a filter that admits entries without a project.
func NoProject() ProjectFilter {
	return ProjectFilter{Kind: FilterNone}
}

// NamedProject returns a filter for a single project.
func NamedProject(name string) ProjectFilter {
	return ProjectFilter{Kind: FilterNamed, Name: name}
}

// Matches reports whether the entry belongs to the filtered bucket.
func (f ProjectFilter) Matches(te TimeEntry) bool {
	switch f.Kind {
	case FilterNone:
		return te.Project == nil
	case FilterNamed:
		return te.Project != nil && *te.Project == f.Name
	default:
		return true
	}
}

// Apply returns the entries admitted by the filter, preserving order.
func (f ProjectFilter) Apply(entries []TimeEntry) []TimeEntry {
	if f.Kind == FilterAll {
		return entries
	}
	out := make([]TimeEntry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// String returns a human-readable description of the filter.
func (f ProjectFilter) String() string {
	switch f.Kind {
	case FilterNone:
		return "no project"
	case FilterNamed:
		return f.Name
	default:
		return "all projects"
	}
}

// Project is a named bucket of entries. Declared projects exist even with
// zero entries.
type Project struct {
	Name       string
	EntryCount int
}

// ProjectLabel renders an optional project for display; nil is "no project".
func ProjectLabel(project *string) string {
	if project == nil {
		return "no project"
	}
	return *project
}
