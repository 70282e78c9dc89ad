package coordinatornode

import (
	"context"
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	statex "github.com/verdanthealth/wellness-agent/agent/state"
)

// SaveSession records the exchange and persists the session. Both lines land
// in history so the generator sees its own prior replies on the next turn.
func SaveSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	historyLimit int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.AppendHistory("user: "+in.Text, historyLimit)
	in.Session.AppendHistory("assistant: "+in.Reply, historyLimit)
	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}

	return in, nil
}
