// Package roles holds the role-specialized handlers behind the coordinator's
// closed dispatch table. Every handler works through the Memory API with the
// capability handle it was given; none of them can reach the store directly.
package roles

import (
	"context"
	"errors"

	accommodationx "github.com/verdanthealth/wellness-agent/agent/accommodation"
	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
)

type registryImpl struct {
	employee     contractx.Handler
	hrManager    contractx.Handler
	employer     contractx.Handler
	leaveRequest contractx.Handler
	search       contractx.Handler
	help         contractx.Handler
}

func (r *registryImpl) Employee() contractx.Handler     { return r.employee }
func (r *registryImpl) HRManager() contractx.Handler    { return r.hrManager }
func (r *registryImpl) Employer() contractx.Handler     { return r.employer }
func (r *registryImpl) LeaveRequest() contractx.Handler { return r.leaveRequest }
func (r *registryImpl) Search() contractx.Handler       { return r.search }
func (r *registryImpl) Help() contractx.Handler         { return r.help }

// NewRegistry builds the closed handler set. Adding a handler means adding a
// Registry method; there is no runtime registration.
func NewRegistry(
	memory *memoryx.Service,
	accommodations *accommodationx.Service,
	searchProvider contractx.SearchProvider,
) (contractx.Registry, error) {
	if memory == nil {
		return nil, errors.New("memory service is required")
	}
	if accommodations == nil {
		return nil, errors.New("accommodation service is required")
	}
	if searchProvider == nil {
		searchProvider = noopSearchProvider{}
	}

	return &registryImpl{
		employee:     &EmployeeHandler{memory: memory},
		hrManager:    &HRManagerHandler{memory: memory, accommodations: accommodations},
		employer:     &EmployerHandler{memory: memory},
		leaveRequest: &LeaveRequestHandler{accommodations: accommodations},
		search:       &SearchHandler{provider: searchProvider},
		help:         &HelpHandler{},
	}, nil
}

type noopSearchProvider struct{}

func (noopSearchProvider) Search(_ context.Context, _ string) ([]contractx.SearchResult, error) {
	return nil, nil
}
