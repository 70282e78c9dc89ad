package roles

import (
	"context"
	"fmt"

	accommodationx "github.com/verdanthealth/wellness-agent/agent/accommodation"
	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
)

// HRManagerHandler serves department-level insight. Everything it learns
// about employees comes back as threshold-aggregated records or redacted
// accommodation views; it never requests an employee-scoped raw category.
type HRManagerHandler struct {
	memory         *memoryx.Service
	accommodations *accommodationx.Service
}

func (h *HRManagerHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	switch {
	case containsAny(req.Text, "policy", "decision", "record"):
		return h.logPolicy(ctx, req)
	case containsAny(req.Text, "accommodation", "request", "pending"):
		return h.reviewRequests(ctx, req)
	default:
		return h.departmentTrends(ctx, req)
	}
}

func (h *HRManagerHandler) departmentTrends(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	department := extractDepartment(req.Text)

	result, err := h.memory.Recall(ctx, req.Handle, contractx.CategorySymptomLog, department)
	if err != nil {
		return contractx.HandlerResult{}, err
	}
	return aggregateResultToHandlerResult(result.Aggregate, department)
}

func (h *HRManagerHandler) reviewRequests(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	requests, err := h.accommodations.ListForOrg(ctx, req.Handle)
	if err != nil {
		return contractx.HandlerResult{}, err
	}

	pending := 0
	summaries := make([]map[string]any, 0, len(requests))
	for _, request := range requests {
		if request.Status == contractx.StatusPending {
			pending++
		}
		summaries = append(summaries, map[string]any{
			"request_id": request.RequestID,
			"type":       request.Type,
			"status":     string(request.Status),
			"start_date": request.StartDate,
		})
	}

	return contractx.HandlerResult{
		Kind:    "accommodation_review",
		Summary: fmt.Sprintf("%d requests, %d pending", len(requests), pending),
		Data:    map[string]any{"requests": summaries},
	}, nil
}

func (h *HRManagerHandler) logPolicy(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	key := req.Now.UTC().Format("2006-01-02T15:04:05Z")
	if err := h.memory.Remember(ctx, req.Handle, contractx.CategoryPolicyLog, key, req.Text); err != nil {
		return contractx.HandlerResult{}, err
	}
	return contractx.HandlerResult{
		Kind:    "policy_logged",
		Summary: "policy decision recorded",
		Data:    map[string]any{"recorded_at": key},
	}, nil
}

// aggregateResultToHandlerResult renders an aggregation outcome without ever
// fabricating a number: below the threshold the handler says so.
func aggregateResultToHandlerResult(result *contractx.AggregateResult, groupingKey string) (contractx.HandlerResult, error) {
	if result == nil {
		return contractx.HandlerResult{}, fmt.Errorf("%w: expected aggregated recall", contractx.ErrValidation)
	}
	if result.Insufficient {
		return contractx.HandlerResult{
			Kind:    "insufficient_data",
			Summary: "not enough data to report",
			Data:    map[string]any{"grouping_key": groupingKey},
		}, nil
	}
	record := result.Record
	return contractx.HandlerResult{
		Kind:    "aggregate_report",
		Summary: fmt.Sprintf("%s %s = %.2f over %d contributors", record.Category, record.Statistic, record.Value, record.ContributingCount),
		Data: map[string]any{
			"category":           string(record.Category),
			"grouping_key":       record.GroupingKey,
			"statistic":          string(record.Statistic),
			"value":              record.Value,
			"contributing_count": record.ContributingCount,
			"period":             record.Period,
		},
	}, nil
}
