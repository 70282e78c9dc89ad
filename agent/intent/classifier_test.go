package intent

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

func TestKeywordClassifierRoutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		role contractx.Role
		text string
		want contractx.Target
	}{
		{
			name: "symptom logging",
			role: contractx.RoleEmployee,
			text: "I want to log a headache today",
			want: contractx.TargetEmployee,
		},
		{
			name: "leave request",
			role: contractx.RoleEmployee,
			text: "I need a sick day on Friday",
			want: contractx.TargetLeaveRequest,
		},
		{
			name: "hr trends",
			role: contractx.RoleHRManager,
			text: "show me the trend for the engineering department",
			want: contractx.TargetHRManager,
		},
		{
			name: "employer roi",
			role: contractx.RoleEmployer,
			text: "what is the roi of the wellness program",
			want: contractx.TargetEmployer,
		},
		{
			name: "search",
			role: contractx.RoleEmployee,
			text: "search for stretching exercises",
			want: contractx.TargetSearch,
		},
		{
			name: "employer asking for trends stays in employer envelope",
			role: contractx.RoleEmployer,
			text: "any trend this quarter",
			want: contractx.TargetEmployer,
		},
		{
			name: "hr asking personal-sounding question stays in hr envelope",
			role: contractx.RoleHRManager,
			text: "log a policy decision about symptom reports",
			want: contractx.TargetHRManager,
		},
	}

	classifier := NewKeywordClassifier()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := classifier.Classify(context.Background(), tc.role, tc.text)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Classify() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestKeywordClassifierNoRoute(t *testing.T) {
	t.Parallel()

	classifier := NewKeywordClassifier()
	_, err := classifier.Classify(context.Background(), contractx.RoleEmployee, "what's the weather like")
	if !errors.Is(err, contractx.ErrNoRoute) {
		t.Fatalf("Classify() error = %v, want ErrNoRoute", err)
	}
}
