package policy

import (
	"strings"
	"testing"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

func TestDefaultTableValidates(t *testing.T) {
	t.Parallel()

	engine, err := New(DefaultTable(5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if engine == nil {
		t.Fatal("expected engine")
	}
}

func TestDecideEnvelopes(t *testing.T) {
	t.Parallel()

	engine := MustNew(DefaultTable(5))

	cases := []struct {
		role     contractx.Role
		category contractx.Category
		want     contractx.DecisionKind
	}{
		{contractx.RoleEmployee, contractx.CategorySymptomLog, contractx.DecisionAllow},
		{contractx.RoleEmployee, contractx.CategoryROIMetrics, contractx.DecisionDeny},
		{contractx.RoleHRManager, contractx.CategorySymptomLog, contractx.DecisionAllowAggregated},
		{contractx.RoleHRManager, contractx.CategoryPolicyLog, contractx.DecisionAllow},
		{contractx.RoleHRManager, contractx.CategoryPreferences, contractx.DecisionDeny},
		{contractx.RoleEmployer, contractx.CategorySymptomLog, contractx.DecisionAllowAggregated},
		{contractx.RoleEmployer, contractx.CategoryPolicyLog, contractx.DecisionDeny},
		{contractx.RoleEmployer, contractx.CategoryROIMetrics, contractx.DecisionAllow},
	}

	for _, tc := range cases {
		got := engine.Decide(tc.role, tc.category)
		if got.Kind != tc.want {
			t.Errorf("Decide(%s, %s) = %s, want %s", tc.role, tc.category, got.Kind, tc.want)
		}
		if got.Kind == contractx.DecisionAllowAggregated && got.MinGroupSize != 5 {
			t.Errorf("Decide(%s, %s) min group size = %d, want 5", tc.role, tc.category, got.MinGroupSize)
		}
	}
}

func TestDecideFailsClosed(t *testing.T) {
	t.Parallel()

	engine := MustNew(DefaultTable(5))

	if got := engine.Decide("contractor", contractx.CategorySymptomLog); got.Kind != contractx.DecisionDeny {
		t.Fatalf("unknown role: got %s, want deny", got.Kind)
	}
	if got := engine.Decide(contractx.RoleEmployee, "payroll"); got.Kind != contractx.DecisionDeny {
		t.Fatalf("unknown category: got %s, want deny", got.Kind)
	}
}

func TestNewRejectsIncompleteTable(t *testing.T) {
	t.Parallel()

	table := DefaultTable(5)
	delete(table[contractx.RoleHRManager], contractx.CategoryPolicyLog)

	_, err := New(table)
	if err == nil {
		t.Fatal("expected error for missing mapping")
	}
	if !strings.Contains(err.Error(), "policy_log") {
		t.Fatalf("error should name the missing category, got %v", err)
	}
}

func TestNewRejectsInvalidGroupSize(t *testing.T) {
	t.Parallel()

	table := DefaultTable(5)
	table[contractx.RoleEmployer][contractx.CategorySymptomLog] = contractx.AllowAggregated(0)

	if _, err := New(table); err == nil {
		t.Fatal("expected error for non-positive group size")
	}
}

func TestNewRejectsMissingRole(t *testing.T) {
	t.Parallel()

	table := DefaultTable(5)
	delete(table, contractx.RoleEmployer)

	if _, err := New(table); err == nil {
		t.Fatal("expected error for missing role")
	}
}
