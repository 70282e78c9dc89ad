package coordinatornode

import (
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

func FinalizeResponse(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: reply is empty", contractx.ErrValidation)
	}

	return GraphOutput{
		Response: contractx.Response{
			Text:      in.Reply,
			SessionID: in.SessionID,
		},
	}, nil
}
