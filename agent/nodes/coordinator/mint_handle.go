package coordinatornode

import (
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// MintHandle issues the capability handle for this request. Employees get a
// handle scoped to their own user id; HR managers and employers act on
// organization scope. Handlers never see raw identity fields, only the
// handle.
func MintHandle(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	scope := in.Session.UserID
	if in.Session.Role != contractx.RoleEmployee {
		scope = in.Session.OrganizationID
	}

	in.Handle = contractx.MintHandle(
		in.Session.Role,
		scope,
		in.Session.OrganizationID,
		in.Session.Department,
		in.Session.SessionID,
	)
	return in, nil
}
