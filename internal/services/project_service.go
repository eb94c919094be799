package services

import (
	"context"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/logging"
	"chronii/internal/validation"
)

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	store     Store
	validator *validation.EntryValidator
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(store Store, validator *validation.EntryValidator) ProjectService {
	if validator == nil {
		validator = validation.NewEntryValidator()
	}
	return &projectServiceImpl{store: store, validator: validator}
}

func (p *projectServiceImpl) requireName(name string) (string, error) {
	cleaned, err := p.validator.RequireProjectName(name)
	if err != nil {
		return "", errors.NewValidationError("invalid project name", err)
	}
	return cleaned, nil
}

// cleanOptional normalizes an optional project; nil means "no project"
func (p *projectServiceImpl) cleanOptional(project *string) (*string, error) {
	cleaned, err := p.validator.CleanProjectName(project)
	if err != nil {
		return nil, errors.NewValidationError("invalid project name", err)
	}
	return cleaned, nil
}

// Create declares a project so it exists before it has entries
func (p *projectServiceImpl) Create(ctx context.Context, name string) (string, error) {
	cleaned, err := p.requireName(name)
	if err != nil {
		return "", err
	}
	if err := p.store.CreateProject(ctx, cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}

// List returns every known project with its entry count
func (p *projectServiceImpl) List(ctx context.Context) ([]domain.Project, error) {
	names, err := p.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(names))
	for _, name := range names {
		name := name
		count, err := p.store.CountByProject(ctx, &name)
		if err != nil {
			return nil, err
		}
		projects = append(projects, domain.Project{Name: name, EntryCount: count})
	}
	return projects, nil
}

// Count returns the number of entries in a project; nil counts entries without one
func (p *projectServiceImpl) Count(ctx context.Context, project *string) (int, error) {
	cleaned, err := p.cleanOptional(project)
	if err != nil {
		return 0, err
	}
	return p.store.CountByProject(ctx, cleaned)
}

// Delete removes a project and all its entries, returning how many entries were removed
func (p *projectServiceImpl) Delete(ctx context.Context, project *string) (int64, error) {
	cleaned, err := p.cleanOptional(project)
	if err != nil {
		return 0, err
	}
	removed, err := p.store.DeleteProject(ctx, cleaned)
	if err != nil {
		return 0, err
	}
	logging.Logger().Debug("deleted project", "project", domain.ProjectLabel(cleaned), "entries", removed)
	return removed, nil
}

// Rename moves every entry of oldName to newName
func (p *projectServiceImpl) Rename(ctx context.Context, oldName, newName string) (int64, error) {
	from, err := p.requireName(oldName)
	if err != nil {
		return 0, err
	}
	to, err := p.requireName(newName)
	if err != nil {
		return 0, err
	}
	if from == to {
		return 0, nil
	}

	updated, err := p.store.RenameProject(ctx, from, to)
	if err != nil {
		return 0, err
	}
	logging.Logger().Debug("renamed project", "from", from, "to", to, "entries", updated)
	return updated, nil
}
