package coordinatornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	statex "github.com/verdanthealth/wellness-agent/agent/state"
)

// ResolveSession loads the pinned session for the request, or creates one on
// first contact. An existing session whose pinned role differs from the
// claimed role fails with ErrRoleMismatch before any handler runs.
func ResolveSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	session, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrSessionNotFound) {
			return nil, err
		}
		in.Session = statex.NewSession(in.SessionID, in.Role, in.UserID, in.OrganizationID, in.Department, in.Now)
		return in, nil
	}

	if err := session.CheckRole(in.Role); err != nil {
		return nil, err
	}

	in.Session = session
	return in, nil
}
