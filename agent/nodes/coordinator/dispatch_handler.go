package coordinatornode

import (
	"context"
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// DispatchHandler routes the request to the handler for the classified
// target. The dispatch table is closed: an unknown target is a bug, not a
// routing decision.
func DispatchHandler(
	ctx context.Context,
	in *GraphState,
	handlers contractx.Registry,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	handler, err := pickHandler(in.Target, handlers)
	if err != nil {
		return nil, err
	}

	result, err := handler.Handle(ctx, contractx.HandlerRequest{
		Text:    in.Text,
		Target:  in.Target,
		Handle:  in.Handle,
		History: in.Session.History,
		Now:     in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Result = result
	return in, nil
}

func pickHandler(target contractx.Target, handlers contractx.Registry) (contractx.Handler, error) {
	switch target {
	case contractx.TargetEmployee:
		return handlers.Employee(), nil
	case contractx.TargetHRManager:
		return handlers.HRManager(), nil
	case contractx.TargetEmployer:
		return handlers.Employer(), nil
	case contractx.TargetLeaveRequest:
		return handlers.LeaveRequest(), nil
	case contractx.TargetSearch:
		return handlers.Search(), nil
	case contractx.TargetHelp:
		return handlers.Help(), nil
	default:
		return nil, fmt.Errorf("%w: unknown target=%q", contractx.ErrValidation, target)
	}
}
