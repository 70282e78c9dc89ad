package coordinatornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// ClassifyIntent maps the request text to exactly one handler target. When
// the classifier cannot place the text anywhere it routes to the help
// handler instead of failing the request.
func ClassifyIntent(
	ctx context.Context,
	in *GraphState,
	classifier contractx.Classifier,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	target, err := classifier.Classify(ctx, in.Role, in.Text)
	if err != nil {
		if !errors.Is(err, contractx.ErrNoRoute) {
			return nil, err
		}
		in.Target = contractx.TargetHelp
		return in, nil
	}

	in.Target = target
	return in, nil
}
