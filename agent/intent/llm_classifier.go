package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

const classifierSystemPrompt = `You route messages for a workplace wellness assistant.

Reply with exactly one word, the target name:
- employee_support: logging symptoms, personal check-ins, preferences, wellness tips
- hr_manager: department trends, policy notes, reviewing requests
- employer_insights: organization-wide metrics, ROI, absenteeism
- leave_request: sick days, time off, accommodations, approving or denying requests
- search: looking up external articles or resources
- none: nothing above fits`

// LLMClassifier routes with a chat completion and falls back to the keyword
// matcher when the model call fails. A reply of "none" or anything that is
// not a known target is ErrNoRoute.
type LLMClassifier struct {
	client   *openaisdk.Client
	model    string
	fallback contractx.Classifier
}

func NewLLMClassifier(client *openaisdk.Client, model string) (*LLMClassifier, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("classifier model is required")
	}
	return &LLMClassifier{
		client:   client,
		model:    model,
		fallback: NewKeywordClassifier(),
	}, nil
}

func (c *LLMClassifier) Classify(ctx context.Context, role contractx.Role, text string) (contractx.Target, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(classifierSystemPrompt),
			openaisdk.UserMessage(fmt.Sprintf("role: %s\nmessage: %s", role, text)),
		},
		Temperature:         openaisdk.Float(0),
		MaxCompletionTokens: openaisdk.Int(8),
	})
	if err != nil {
		log.Warn().Err(err).Msg("classifier model call failed, using keyword fallback")
		return c.fallback.Classify(ctx, role, text)
	}
	if len(completion.Choices) == 0 {
		return "", contractx.ErrNoRoute
	}

	answer := strings.ToLower(strings.TrimSpace(completion.Choices[0].Message.Content))
	switch contractx.Target(answer) {
	case contractx.TargetEmployee, contractx.TargetHRManager, contractx.TargetEmployer,
		contractx.TargetLeaveRequest, contractx.TargetSearch:
		return resolveForRole(contractx.Target(answer), role), nil
	default:
		return "", contractx.ErrNoRoute
	}
}
