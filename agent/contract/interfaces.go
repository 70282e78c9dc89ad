package contract

import "context"

// Handler is one role-specialized business logic component. Handlers compose
// Memory API calls through their capability handle and return a structured
// result; they never talk to the generation collaborator directly.
type Handler interface {
	Handle(ctx context.Context, req HandlerRequest) (HandlerResult, error)
}

// Registry is the closed dispatch table of handlers. One method per target;
// there is no dynamic registration at runtime.
type Registry interface {
	Employee() Handler
	HRManager() Handler
	Employer() Handler
	LeaveRequest() Handler
	Search() Handler
	Help() Handler
}

// Classifier maps free text to exactly one handler target. It returns
// ErrNoRoute when no target fits; the coordinator then falls back to Help.
type Classifier interface {
	Classify(ctx context.Context, role Role, text string) (Target, error)
}

// Generator is the external text-generation collaborator: stateless and
// side-effect-free from the core's perspective.
type Generator interface {
	Phrase(ctx context.Context, result HandlerResult, history []string) (string, error)
}

// SearchProvider is the external search collaborator used by the search
// handler.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
