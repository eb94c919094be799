package services

import (
	"github.com/jonboulle/clockwork"

	"chronii/internal/validation"
)

// NewServiceContainer wires every service to one store, clock and validator
func NewServiceContainer(store Store, clock clockwork.Clock, validator *validation.EntryValidator) *ServiceContainer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if validator == nil {
		validator = validation.NewEntryValidator()
	}
	return &ServiceContainer{
		EntryService:     NewEntryService(store, clock, validator),
		ProjectService:   NewProjectService(store, validator),
		ReportingService: NewReportingService(store, clock, validator),
	}
}
