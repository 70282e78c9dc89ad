// Package intent maps free text to one handler target. The classifier is
// pluggable; the keyword matcher here is the shipped default and the router
// only requires that some classifier return exactly one target or ErrNoRoute.
package intent

import (
	"context"
	"strings"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

type KeywordClassifier struct {
	keywords map[contractx.Target][]string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: map[contractx.Target][]string{
			contractx.TargetLeaveRequest: {
				"leave", "sick day", "time off", "accommodation", "remote work",
				"flexible hours", "work from home", "request status", "approve", "deny",
			},
			contractx.TargetSearch: {
				"search", "look up", "find information", "article", "resources",
			},
			contractx.TargetEmployee: {
				"symptom", "log", "check in", "check-in", "track", "feeling",
				"headache", "fatigue", "stress", "tip", "preference", "history", "forget",
			},
			contractx.TargetHRManager: {
				"trend", "department", "policy", "report", "anonymous", "aggregate",
			},
			contractx.TargetEmployer: {
				"roi", "organization", "org-wide", "absenteeism", "productivity", "metric",
			},
		},
	}
}

// Classify scores keyword hits and picks the highest-scoring target. Insight
// requests resolve by role: "trends" from an employer goes to the employer
// handler even when HR vocabulary matches. No hits is ErrNoRoute.
func (c *KeywordClassifier) Classify(ctx context.Context, role contractx.Role, text string) (contractx.Target, error) {
	lowered := strings.ToLower(text)

	best := contractx.Target("")
	bestScore := 0
	for _, target := range []contractx.Target{
		contractx.TargetLeaveRequest,
		contractx.TargetSearch,
		contractx.TargetEmployee,
		contractx.TargetHRManager,
		contractx.TargetEmployer,
	} {
		score := 0
		for _, kw := range c.keywords[target] {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = target
			bestScore = score
		}
	}

	if bestScore == 0 {
		return "", contractx.ErrNoRoute
	}

	return resolveForRole(best, role), nil
}

// resolveForRole keeps insight traffic inside the caller's privacy envelope.
func resolveForRole(target contractx.Target, role contractx.Role) contractx.Target {
	switch target {
	case contractx.TargetHRManager:
		if role == contractx.RoleEmployer {
			return contractx.TargetEmployer
		}
	case contractx.TargetEmployer:
		if role == contractx.RoleHRManager {
			return contractx.TargetHRManager
		}
	case contractx.TargetEmployee:
		switch role {
		case contractx.RoleHRManager:
			return contractx.TargetHRManager
		case contractx.RoleEmployer:
			return contractx.TargetEmployer
		}
	}
	return target
}
