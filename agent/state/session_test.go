package state

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

func TestCheckRolePinsSessionRole(t *testing.T) {
	t.Parallel()

	now := time.Now()
	session := NewSession("s1", contractx.RoleEmployee, "u1", "org-1", "engineering", now)

	if err := session.CheckRole(contractx.RoleEmployee); err != nil {
		t.Fatalf("CheckRole(same role) error = %v", err)
	}

	err := session.CheckRole(contractx.RoleHRManager)
	if !errors.Is(err, contractx.ErrRoleMismatch) {
		t.Fatalf("CheckRole(other role) error = %v, want ErrRoleMismatch", err)
	}
	if session.Role != contractx.RoleEmployee {
		t.Fatalf("role changed after mismatch: %s", session.Role)
	}
}

func TestAppendHistoryBounded(t *testing.T) {
	t.Parallel()

	session := NewSession("s1", contractx.RoleEmployee, "u1", "org-1", "", time.Now())
	for i := 0; i < 10; i++ {
		session.AppendHistory("line", 4)
	}
	if len(session.History) != 4 {
		t.Fatalf("history length = %d, want 4", len(session.History))
	}

	session.AppendHistory("   ", 4)
	if len(session.History) != 4 {
		t.Fatal("blank lines must not be recorded")
	}
}

func TestValidateRejectsBadSessions(t *testing.T) {
	t.Parallel()

	s := &Session{SessionID: "", Role: contractx.RoleEmployee}
	if err := s.Validate(); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSession", err)
	}

	s = &Session{SessionID: "s1", Role: "superuser"}
	if err := s.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestMemStoreExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	store := NewMemStore(time.Hour)
	current := time.Now()
	store.now = func() time.Time { return current }

	session := NewSession("s1", contractx.RoleEmployee, "u1", "org-1", "", current)
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "s1"); err != nil {
		t.Fatalf("Load() before expiry error = %v", err)
	}

	current = current.Add(2 * time.Hour)
	_, err := store.Load(context.Background(), "s1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() after expiry error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemStoreClonesHistory(t *testing.T) {
	t.Parallel()

	store := NewMemStore(0)
	session := NewSession("s1", contractx.RoleEmployee, "u1", "org-1", "", time.Now())
	session.AppendHistory("user: hello", 10)
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	loaded.AppendHistory("user: mutated", 10)

	again, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(again.History) != 1 {
		t.Fatalf("stored history mutated through a loaded copy: %#v", again.History)
	}
}
