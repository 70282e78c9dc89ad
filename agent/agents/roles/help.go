package roles

import (
	"context"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// HelpHandler is the NoRoute fallback: it answers with what the caller's role
// can actually do instead of failing the request.
type HelpHandler struct{}

func (h *HelpHandler) Handle(_ context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	var capabilities []string
	switch req.Handle.Role() {
	case contractx.RoleEmployee:
		capabilities = []string{
			"log a symptom or do a quick check-in",
			"view your symptom history",
			"set notification preferences",
			"submit or track a leave or accommodation request",
			"search for wellness resources",
		}
	case contractx.RoleHRManager:
		capabilities = []string{
			"view anonymized department trends",
			"review and approve accommodation requests",
			"record policy decisions",
		}
	case contractx.RoleEmployer:
		capabilities = []string{
			"view organization-wide wellness trends",
			"view wellness program roi metrics",
		}
	default:
		capabilities = []string{"start a session as employee, hr_manager, or employer"}
	}

	return contractx.HandlerResult{
		Kind:    "help",
		Summary: "here is what I can help with",
		Data:    map[string]any{"capabilities": capabilities},
	}, nil
}
