package coordinatornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// PhraseReply turns the structured handler result into user-facing text. The
// generator only ever sees what the handler chose to return; denied requests
// never reach this node.
func PhraseReply(
	ctx context.Context,
	in *GraphState,
	generator contractx.Generator,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	reply, err := generator.Phrase(ctx, in.Result, in.Session.History)
	if err != nil {
		return nil, err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: generator returned empty reply", contractx.ErrValidation)
	}

	in.Reply = reply
	return in, nil
}
