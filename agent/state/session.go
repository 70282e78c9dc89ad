package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// Session pins a conversation to the role it was opened with. The coordinator
// is stateless across requests; all continuity lives here and in the memory
// store.
type Session struct {
	SessionID      string        `json:"session_id"`
	Role           contractx.Role `json:"role"`
	UserID         string        `json:"user_id"`
	OrganizationID string        `json:"organization_id"`
	Department     string        `json:"department,omitempty"`
	History        []string      `json:"history,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActiveAt   time.Time     `json:"last_active_at"`
}

func NewSession(sessionID string, role contractx.Role, userID, organizationID, department string, now time.Time) *Session {
	return &Session{
		SessionID:      sessionID,
		Role:           role,
		UserID:         userID,
		OrganizationID: organizationID,
		Department:     department,
		CreatedAt:      now.UTC(),
		LastActiveAt:   now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.LastActiveAt = now.UTC()
}

// CheckRole enforces role pinning: the claimed role of every request must
// match the role the session was created with. A role change requires a new
// session.
func (s *Session) CheckRole(claimed contractx.Role) error {
	if s.Role != claimed {
		return fmt.Errorf("%w: session pinned to %s, request claims %s", contractx.ErrRoleMismatch, s.Role, claimed)
	}
	return nil
}

// AppendHistory keeps a bounded window of recent exchanges for the generation
// collaborator.
func (s *Session) AppendHistory(line string, limit int) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	s.History = append(s.History, line)
	if limit > 0 && len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

func (s *Session) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if _, ok := contractx.ParseRole(string(s.Role)); !ok {
		return fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, s.Role)
	}
	return nil
}
