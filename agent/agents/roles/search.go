package roles

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// SearchHandler delegates to the external search collaborator. It holds no
// memory handle at all: search results are public information and nothing
// here may touch remembered state.
type SearchHandler struct {
	provider contractx.SearchProvider
}

func (h *SearchHandler) Handle(ctx context.Context, req contractx.HandlerRequest) (contractx.HandlerResult, error) {
	query := searchQuery(req.Text)
	if query == "" {
		return contractx.HandlerResult{
			Kind:    "search_results",
			Summary: "nothing to search for",
		}, nil
	}

	results, err := h.provider.Search(ctx, query)
	if err != nil {
		return contractx.HandlerResult{}, fmt.Errorf("search collaborator: %w", err)
	}

	items := make([]map[string]any, 0, len(results))
	for _, result := range results {
		items = append(items, map[string]any{
			"title":   result.Title,
			"url":     result.URL,
			"snippet": result.Snippet,
		})
	}

	return contractx.HandlerResult{
		Kind:    "search_results",
		Summary: fmt.Sprintf("%d results for %q", len(items), query),
		Data:    map[string]any{"query": query, "results": items},
	}, nil
}

func searchQuery(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, prefix := range []string{"search for", "search", "look up", "find information about", "find"} {
		if strings.HasPrefix(lowered, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return strings.TrimSpace(text)
}
