package coordinatornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	statex "github.com/verdanthealth/wellness-agent/agent/state"
)

var (
	ErrInvalidText    = errors.New("request text is empty")
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidUser    = errors.New("user id is empty")
	ErrInvalidOrg     = errors.New("organization id is empty")
)

type GraphInput struct {
	Request contractx.Request
}

type GraphOutput struct {
	Response contractx.Response
}

type GraphState struct {
	SessionID      string
	Role           contractx.Role
	UserID         string
	OrganizationID string
	Department     string
	Text           string
	Now            time.Time

	Session *statex.Session
	Target  contractx.Target
	Handle  contractx.Handle

	Result contractx.HandlerResult
	Reply  string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.Request.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	userID := strings.TrimSpace(in.Request.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}
	organizationID := strings.TrimSpace(in.Request.OrganizationID)
	if organizationID == "" {
		return nil, ErrInvalidOrg
	}
	text := strings.TrimSpace(in.Request.Text)
	if text == "" {
		return nil, ErrInvalidText
	}

	role, ok := contractx.ParseRole(in.Request.ClaimedRole)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, in.Request.ClaimedRole)
	}

	return &GraphState{
		SessionID:      sessionID,
		Role:           role,
		UserID:         userID,
		OrganizationID: organizationID,
		Department:     strings.TrimSpace(in.Request.Department),
		Text:           text,
		Now:            nowFn().UTC(),
	}, nil
}
