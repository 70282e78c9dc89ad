package generation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// StaticGenerator renders handler results without a model. It is used when
// no generation backend is configured and in tests; output is deterministic.
type StaticGenerator struct{}

func NewStatic() *StaticGenerator {
	return &StaticGenerator{}
}

func (StaticGenerator) Phrase(_ context.Context, result contractx.HandlerResult, _ []string) (string, error) {
	var b strings.Builder
	summary := strings.TrimSpace(result.Summary)
	if summary == "" {
		summary = "Done."
	}
	b.WriteString(summary)

	if len(result.Data) > 0 {
		keys := make([]string, 0, len(result.Data))
		for k := range result.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s: %v", k, result.Data[k])
		}
	}

	return b.String(), nil
}
