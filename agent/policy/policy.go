// Package policy is the single chokepoint deciding whether a role may touch a
// memory category. Decisions are resolved from a static table validated at
// startup; nothing here is mutated at request time.
package policy

import (
	"fmt"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

// Table maps role x category to a decision. A missing pair is not an implicit
// deny during construction: New requires every role to cover every known
// category so that gaps surface at boot, never at request time.
type Table map[contractx.Role]map[contractx.Category]contractx.Decision

type Config struct {
	MinGroupSize int `envconfig:"MIN_GROUP_SIZE" split_words:"true" default:"5"`
}

type Engine struct {
	table Table
}

// DefaultTable encodes the role privacy envelopes: employees work on their own
// raw data, HR sees department aggregates plus HR-owned categories, employers
// see organization-wide aggregates only.
func DefaultTable(minGroupSize int) Table {
	return Table{
		contractx.RoleEmployee: {
			contractx.CategoryPreferences:          contractx.Allow(),
			contractx.CategorySymptomLog:           contractx.Allow(),
			contractx.CategoryAccommodationHistory: contractx.Allow(),
			contractx.CategoryPolicyLog:            contractx.Deny(),
			contractx.CategoryROIMetrics:           contractx.Deny(),
			contractx.CategoryWellnessTips:         contractx.Allow(),
		},
		contractx.RoleHRManager: {
			contractx.CategoryPreferences:          contractx.Deny(),
			contractx.CategorySymptomLog:           contractx.AllowAggregated(minGroupSize),
			contractx.CategoryAccommodationHistory: contractx.AllowAggregated(minGroupSize),
			contractx.CategoryPolicyLog:            contractx.Allow(),
			contractx.CategoryROIMetrics:           contractx.Deny(),
			contractx.CategoryWellnessTips:         contractx.Allow(),
		},
		contractx.RoleEmployer: {
			contractx.CategoryPreferences:          contractx.Deny(),
			contractx.CategorySymptomLog:           contractx.AllowAggregated(minGroupSize),
			contractx.CategoryAccommodationHistory: contractx.AllowAggregated(minGroupSize),
			contractx.CategoryPolicyLog:            contractx.Deny(),
			contractx.CategoryROIMetrics:           contractx.Allow(),
			contractx.CategoryWellnessTips:         contractx.Allow(),
		},
	}
}

// New validates the table and returns an engine. A missing role, a missing
// category mapping, or an aggregated decision without a positive group size is
// a configuration error and must be fatal at boot.
func New(table Table) (*Engine, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("policy table is empty")
	}
	for _, role := range contractx.Roles {
		perCategory, ok := table[role]
		if !ok {
			return nil, fmt.Errorf("policy table missing role %q", role)
		}
		for _, category := range contractx.Categories {
			decision, ok := perCategory[category]
			if !ok {
				return nil, fmt.Errorf("policy table missing mapping for role=%q category=%q", role, category)
			}
			switch decision.Kind {
			case contractx.DecisionAllow, contractx.DecisionDeny:
			case contractx.DecisionAllowAggregated:
				if decision.MinGroupSize <= 0 {
					return nil, fmt.Errorf("aggregated decision for role=%q category=%q requires min group size > 0", role, category)
				}
			default:
				return nil, fmt.Errorf("unknown decision kind %q for role=%q category=%q", decision.Kind, role, category)
			}
		}
	}
	return &Engine{table: table}, nil
}

func MustNew(table Table) *Engine {
	engine, err := New(table)
	if err != nil {
		panic(err)
	}
	return engine
}

// Decide is pure and total over the role x category domain. Anything the
// validated table does not cover (an unknown role or category smuggled in at
// runtime) fails closed.
func (e *Engine) Decide(role contractx.Role, category contractx.Category) contractx.Decision {
	perCategory, ok := e.table[role]
	if !ok {
		return contractx.Deny()
	}
	decision, ok := perCategory[category]
	if !ok {
		return contractx.Deny()
	}
	return decision
}
