package roles

import (
	"context"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
)

// EmployerHandler reports organization-wide signals only: aggregated wellness
// trends at org grouping plus the employer's own ROI metrics. No department
// drill-down, no individual data.
type EmployerHandler struct {
	memory *memoryx.Service
}

func (h *EmployerHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	if containsAny(req.Text, "roi", "return on investment", "cost") {
		return h.roiMetrics(ctx, req)
	}
	return h.orgTrends(ctx, req)
}

func (h *EmployerHandler) orgTrends(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	// Grouping key is always empty here: employers see the whole
	// organization or nothing.
	result, err := h.memory.Recall(ctx, req.Handle, contractx.CategorySymptomLog, "")
	if err != nil {
		return contractx.HandlerResult{}, err
	}
	return aggregateResultToHandlerResult(result.Aggregate, "")
}

func (h *EmployerHandler) roiMetrics(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	result, err := h.memory.Recall(ctx, req.Handle, contractx.CategoryROIMetrics, "summary")
	if err != nil {
		return contractx.HandlerResult{}, err
	}
	if !result.Found {
		return contractx.HandlerResult{
			Kind:    "roi_metrics",
			Summary: "no roi metrics recorded",
		}, nil
	}
	return contractx.HandlerResult{
		Kind:    "roi_metrics",
		Summary: "wellness program roi metrics",
		Data:    map[string]any{"metrics": result.Value},
	}, nil
}
