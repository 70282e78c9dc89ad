package roles

import (
	"context"
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
)

const symptomEntriesKey = "entries"

// EmployeeHandler serves the employee's own wellness data: symptom logging,
// quick check-ins, preferences, history. It only ever touches Allow-class
// categories on the employee's own scope.
type EmployeeHandler struct {
	memory *memoryx.Service
}

func (h *EmployeeHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	switch {
	case containsAny(req.Text, "forget", "clear", "delete"):
		return h.clearSymptomLog(ctx, req)
	case containsAny(req.Text, "history", "show", "view"):
		return h.symptomHistory(ctx, req)
	case containsAny(req.Text, "prefer", "preference", "notification"):
		return h.updatePreferences(ctx, req)
	case containsAny(req.Text, "tip", "advice", "suggest"):
		return h.wellnessTips(ctx, req)
	case containsAny(req.Text, "log", "track", "feeling", "check in", "check-in") || extractSymptom(req.Text) != "":
		return h.logSymptom(ctx, req)
	default:
		return h.symptomHistory(ctx, req)
	}
}

func (h *EmployeeHandler) logSymptom(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	symptom := extractSymptom(req.Text)
	if symptom == "" {
		symptom = "general"
	}
	entry := map[string]any{
		"date":    req.Now.UTC().Format("2006-01-02"),
		"symptom": symptom,
	}
	if severity, ok := extractSeverity(req.Text); ok {
		entry["severity"] = severity
	}

	if err := h.memory.RememberList(ctx, req.Handle, contractx.CategorySymptomLog, symptomEntriesKey, entry); err != nil {
		return contractx.HandlerResult{}, err
	}

	return contractx.HandlerResult{
		Kind:    "symptom_logged",
		Summary: fmt.Sprintf("logged %s for %s", symptom, entry["date"]),
		Data:    map[string]any{"entry": entry},
	}, nil
}

func (h *EmployeeHandler) symptomHistory(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	result, err := h.memory.Recall(ctx, req.Handle, contractx.CategorySymptomLog, symptomEntriesKey)
	if err != nil {
		return contractx.HandlerResult{}, err
	}
	if !result.Found {
		return contractx.HandlerResult{
			Kind:    "symptom_history",
			Summary: "no symptom entries recorded yet",
		}, nil
	}
	return contractx.HandlerResult{
		Kind:    "symptom_history",
		Summary: "symptom history",
		Data:    map[string]any{"entries": result.Value},
	}, nil
}

func (h *EmployeeHandler) updatePreferences(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	pairs := extractKeyValues(req.Text)
	if len(pairs) == 0 {
		result, err := h.memory.Recall(ctx, req.Handle, contractx.CategoryPreferences, "settings")
		if err != nil {
			return contractx.HandlerResult{}, err
		}
		return contractx.HandlerResult{
			Kind:    "preferences",
			Summary: "current preferences",
			Data:    map[string]any{"settings": result.Value},
		}, nil
	}

	settings := make(map[string]any, len(pairs))
	for k, v := range pairs {
		settings[k] = v
	}
	if err := h.memory.Remember(ctx, req.Handle, contractx.CategoryPreferences, "settings", settings); err != nil {
		return contractx.HandlerResult{}, err
	}
	return contractx.HandlerResult{
		Kind:    "preferences_updated",
		Summary: "preferences updated",
		Data:    map[string]any{"settings": settings},
	}, nil
}

func (h *EmployeeHandler) wellnessTips(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	result, err := h.memory.Recall(ctx, req.Handle, contractx.CategoryWellnessTips, "general")
	if err != nil {
		return contractx.HandlerResult{}, err
	}
	if !result.Found {
		return contractx.HandlerResult{
			Kind:    "wellness_tips",
			Summary: "no tips available",
		}, nil
	}
	return contractx.HandlerResult{
		Kind:    "wellness_tips",
		Summary: "wellness tips",
		Data:    map[string]any{"tips": result.Value},
	}, nil
}

func (h *EmployeeHandler) clearSymptomLog(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	if err := h.memory.ForgetCategory(ctx, req.Handle, contractx.CategorySymptomLog); err != nil {
		return contractx.HandlerResult{}, err
	}
	return contractx.HandlerResult{
		Kind:    "symptom_log_cleared",
		Summary: "symptom log cleared",
	}, nil
}
