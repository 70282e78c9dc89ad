package coordinatornode

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	statex "github.com/verdanthealth/wellness-agent/agent/state"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 10, 30, 0, 0, time.FixedZone("ICT", 7*3600))
}

func TestValidateRequestNormalizes(t *testing.T) {
	t.Parallel()

	state, err := ValidateRequest(GraphInput{Request: contractx.Request{
		SessionID:      "  sess-1  ",
		ClaimedRole:    "Employee",
		UserID:         "u1",
		OrganizationID: "org-1",
		Department:     " engineering ",
		Text:           "  log a headache  ",
	}}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}

	if state.SessionID != "sess-1" || state.Text != "log a headache" {
		t.Fatalf("fields not trimmed: %#v", state)
	}
	if state.Role != contractx.RoleEmployee {
		t.Fatalf("role = %s", state.Role)
	}
	if state.Department != "engineering" {
		t.Fatalf("department = %q", state.Department)
	}
	if state.Now.Location() != time.UTC {
		t.Fatalf("timestamps must be UTC, got %s", state.Now.Location())
	}
}

func TestValidateRequestRejections(t *testing.T) {
	t.Parallel()

	base := contractx.Request{
		SessionID:      "sess-1",
		ClaimedRole:    "employee",
		UserID:         "u1",
		OrganizationID: "org-1",
		Text:           "hello",
	}

	cases := []struct {
		name    string
		mutate  func(*contractx.Request)
		wantErr error
	}{
		{"empty session", func(r *contractx.Request) { r.SessionID = " " }, ErrInvalidSession},
		{"empty user", func(r *contractx.Request) { r.UserID = "" }, ErrInvalidUser},
		{"empty org", func(r *contractx.Request) { r.OrganizationID = "" }, ErrInvalidOrg},
		{"empty text", func(r *contractx.Request) { r.Text = "  " }, ErrInvalidText},
		{"unknown role", func(r *contractx.Request) { r.ClaimedRole = "root" }, contractx.ErrValidation},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := base
			tc.mutate(&req)
			_, err := ValidateRequest(GraphInput{Request: req}, fixedNow)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateRequest() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestMintHandleScopes(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		role      contractx.Role
		wantScope string
	}{
		{contractx.RoleEmployee, "u1"},
		{contractx.RoleHRManager, "org-1"},
		{contractx.RoleEmployer, "org-1"},
	} {
		state := &GraphState{
			Session: statex.NewSession("sess-1", tc.role, "u1", "org-1", "engineering", fixedNow()),
		}
		got, err := MintHandle(state)
		if err != nil {
			t.Fatalf("MintHandle(%s) error = %v", tc.role, err)
		}
		if got.Handle.Scope() != tc.wantScope {
			t.Fatalf("scope for %s = %q, want %q", tc.role, got.Handle.Scope(), tc.wantScope)
		}
		if got.Handle.Role() != tc.role {
			t.Fatalf("handle role = %s", got.Handle.Role())
		}
		if got.Handle.Department() != "engineering" {
			t.Fatalf("handle department = %q", got.Handle.Department())
		}
	}

	if _, err := MintHandle(&GraphState{}); err == nil {
		t.Fatal("MintHandle() must reject nil session")
	}
}
