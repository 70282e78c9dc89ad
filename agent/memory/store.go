// Package memory is the privacy-aware memory subsystem: a keyed store of
// per-owner entries plus the policy-checked API every handler goes through.
package memory

import (
	"context"
	"errors"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

var (
	ErrEntryNotFound = errors.New("memory entry not found")
	ErrNotAList      = errors.New("memory entry is not a list")
)

// Entry is one remembered value, owned exclusively by Scope. GroupingKey is
// the dimension aggregation groups by (department); OrganizationID lets the
// aggregation scan find entries across owners without knowing who they are.
type Entry struct {
	Scope          string
	OrganizationID string
	Category       contractx.Category
	Key            string
	GroupingKey    string
	Value          any
	UpdatedAt      time.Time
}

// Store is the key-value/document collaborator contract. Implementations must
// serialize concurrent writers to the same (scope, category, key) and make
// AppendList/RemoveList atomic; a torn list write is never acceptable.
// Transient failures are reported as contract.ErrStoreUnavailable so the
// service layer can retry.
type Store interface {
	Get(ctx context.Context, scope string, category contractx.Category, key string) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, scope string, category contractx.Category, key string) error
	DeleteCategory(ctx context.Context, scope string, category contractx.Category) error

	// AppendList appends item to the ordered list at the key, creating the
	// list if absent. Duplicates are permitted.
	AppendList(ctx context.Context, entry *Entry, item any) error

	// RemoveList removes the first exact match of item; absence is a no-op.
	RemoveList(ctx context.Context, scope string, category contractx.Category, key string, item any) error

	// Scan returns every entry under (organization, category) whose grouping
	// key matches. An empty groupingKey matches all groups.
	Scan(ctx context.Context, organizationID string, category contractx.Category, groupingKey string) ([]Entry, error)
}
