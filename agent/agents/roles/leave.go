package roles

import (
	"context"
	"fmt"
	"strings"

	accommodationx "github.com/verdanthealth/wellness-agent/agent/accommodation"
	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// LeaveRequestHandler fronts the accommodation service. Employees submit and
// track their own requests; HR managers review redacted views and transition
// statuses. The service enforces both envelopes; the handler just routes.
type LeaveRequestHandler struct {
	accommodations *accommodationx.Service
}

func (h *LeaveRequestHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	switch req.Handle.Role() {
	case contractx.RoleEmployee:
		return h.handleEmployee(ctx, req)
	case contractx.RoleHRManager:
		return h.handleHR(ctx, req)
	default:
		return contractx.HandlerResult{}, fmt.Errorf("%w: leave requests are not available to %s", contractx.ErrPrivacyViolation, req.Handle.Role())
	}
}

func (h *LeaveRequestHandler) handleEmployee(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	if requestID := extractRequestID(req.Text); requestID != "" {
		request, err := h.accommodations.Get(ctx, req.Handle, requestID)
		if err != nil {
			return contractx.HandlerResult{}, err
		}
		return contractx.HandlerResult{
			Kind:    "request_status",
			Summary: fmt.Sprintf("request %s is %s", request.RequestID, request.Status),
			Data:    requestData(request),
		}, nil
	}

	if containsAny(req.Text, "status", "my requests", "list") {
		requests, err := h.accommodations.ListForOwner(ctx, req.Handle)
		if err != nil {
			return contractx.HandlerResult{}, err
		}
		summaries := make([]map[string]any, 0, len(requests))
		for _, request := range requests {
			summaries = append(summaries, requestData(request))
		}
		return contractx.HandlerResult{
			Kind:    "request_list",
			Summary: fmt.Sprintf("%d requests on file", len(requests)),
			Data:    map[string]any{"requests": summaries},
		}, nil
	}

	return h.submit(ctx, req)
}

func (h *LeaveRequestHandler) submit(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	pairs := extractKeyValues(req.Text)

	params := accommodationx.SubmitParams{
		Type:      requestTypeFromText(req.Text),
		StartDate: pairs["start"],
		EndDate:   pairs["end"],
	}
	if params.StartDate == "" {
		params.StartDate = req.Now.UTC().Format("2006-01-02")
	}
	if level, ok := pairs["anonymity"]; ok {
		params.AnonymityLevel = contractx.AnonymityLevel(level)
	}
	if level, ok := pairs["disclosure"]; ok {
		params.DisclosureLevel = contractx.DisclosureLevel(level)
	}

	request, err := h.accommodations.Submit(ctx, req.Handle, params)
	if err != nil {
		return contractx.HandlerResult{}, err
	}

	return contractx.HandlerResult{
		Kind:    "request_submitted",
		Summary: fmt.Sprintf("submitted %s request for %s", request.Type, request.StartDate),
		Data:    requestData(request),
	}, nil
}

func (h *LeaveRequestHandler) handleHR(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	requestID := extractRequestID(req.Text)
	if requestID != "" {
		var next contractx.RequestStatus
		switch {
		case containsAny(req.Text, "approve"):
			next = contractx.StatusApproved
		case containsAny(req.Text, "deny", "reject"):
			next = contractx.StatusDenied
		case containsAny(req.Text, "complete", "close"):
			next = contractx.StatusCompleted
		}
		if next != "" {
			request, err := h.accommodations.Transition(ctx, req.Handle, requestID, next, "")
			if err != nil {
				return contractx.HandlerResult{}, err
			}
			return contractx.HandlerResult{
				Kind:    "request_transitioned",
				Summary: fmt.Sprintf("request %s is now %s", request.RequestID, request.Status),
				Data:    requestData(request),
			}, nil
		}

		request, err := h.accommodations.Get(ctx, req.Handle, requestID)
		if err != nil {
			return contractx.HandlerResult{}, err
		}
		return contractx.HandlerResult{
			Kind:    "request_status",
			Summary: fmt.Sprintf("request %s is %s", request.RequestID, request.Status),
			Data:    requestData(request),
		}, nil
	}

	requests, err := h.accommodations.ListForOrg(ctx, req.Handle)
	if err != nil {
		return contractx.HandlerResult{}, err
	}
	summaries := make([]map[string]any, 0, len(requests))
	for _, request := range requests {
		summaries = append(summaries, requestData(request))
	}
	return contractx.HandlerResult{
		Kind:    "request_list",
		Summary: fmt.Sprintf("%d requests in review queue", len(requests)),
		Data:    map[string]any{"requests": summaries},
	}, nil
}

func requestData(request contractx.AccommodationRequest) map[string]any {
	return map[string]any{
		"request_id": request.RequestID,
		"type":       request.Type,
		"status":     string(request.Status),
		"start_date": request.StartDate,
		"end_date":   request.EndDate,
	}
}

func requestTypeFromText(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "sick"):
		return "sick_day"
	case strings.Contains(lowered, "remote") || strings.Contains(lowered, "work from home"):
		return "remote_work"
	case strings.Contains(lowered, "flexible") || strings.Contains(lowered, "hours"):
		return "flexible_hours"
	case strings.Contains(lowered, "meeting"):
		return "reduced_meetings"
	case strings.Contains(lowered, "desk") || strings.Contains(lowered, "workspace") || strings.Contains(lowered, "physical"):
		return "physical_modification"
	default:
		return "sick_day"
	}
}
