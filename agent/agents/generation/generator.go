package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// Generator phrases structured handler results through a chat model. It only
// ever sees the result the handler returned and the conversation history; it
// has no access to the memory store and no way to widen what is disclosed.
type Generator struct {
	runner compose.Runnable[map[string]any, llmOutput]
}

type llmOutput struct {
	Reply string `json:"reply"`
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Generator, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}

	runner, err := compilePhraseGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("compile generation graph: %w", err)
	}
	return &Generator{runner: runner}, nil
}

func (g *Generator) Phrase(ctx context.Context, result contractx.HandlerResult, history []string) (string, error) {
	payload := map[string]any{
		"kind":    result.Kind,
		"summary": result.Summary,
		"data":    result.Data,
		"history": tailOf(history, maxHistoryLines),
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal generation payload: %v", contractx.ErrValidation, err)
	}

	out, err := g.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("generation invoke: %w", err)
	}

	reply := strings.TrimSpace(out.Reply)
	if reply == "" {
		return "", fmt.Errorf("%w: generator returned empty reply", contractx.ErrValidation)
	}
	return reply, nil
}

const maxHistoryLines = 10

func tailOf(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
