package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	policyx "github.com/verdanthealth/wellness-agent/agent/policy"
)

// Aggregator converts many owners' entries into one thresholded record. The
// privacy package provides the real implementation; the indirection keeps this
// package free of a dependency cycle.
type Aggregator interface {
	Aggregate(ctx context.Context, organizationID string, category contractx.Category, groupingKey string, minGroupSize int) (contractx.AggregateResult, error)
}

type ServiceConfig struct {
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" split_words:"true" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" split_words:"true" default:"50ms"`
}

// Service is the Memory API. Every operation takes a capability handle and
// passes through the policy engine before touching the store; there is no
// other path from handler code to remembered state.
type Service struct {
	store      Store
	engine     *policyx.Engine
	aggregator Aggregator
	attempts   int
	backoff    time.Duration
}

type RecallResult struct {
	Value     any
	Found     bool
	Aggregate *contractx.AggregateResult
}

func NewService(store Store, engine *policyx.Engine, aggregator Aggregator, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("memory store is required")
	}
	if engine == nil {
		return nil, errors.New("policy engine is required")
	}
	if aggregator == nil {
		return nil, errors.New("aggregator is required")
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	return &Service{
		store:      store,
		engine:     engine,
		aggregator: aggregator,
		attempts:   attempts,
		backoff:    backoff,
	}, nil
}

// Remember upserts a single value under the caller's own scope. Writes demand
// a plain Allow: an aggregated grant never licenses a raw write.
func (s *Service) Remember(ctx context.Context, handle contractx.Handle, category contractx.Category, key string, value any) error {
	if err := s.checkWrite(handle, category); err != nil {
		return err
	}
	return s.store.Put(ctx, s.ownedEntry(handle, category, key, value))
}

// RememberList appends item to the list at key. Repeated identical calls grow
// the list; that is documented behavior, not a bug.
func (s *Service) RememberList(ctx context.Context, handle contractx.Handle, category contractx.Category, key string, item any) error {
	if err := s.checkWrite(handle, category); err != nil {
		return err
	}
	return s.store.AppendList(ctx, s.ownedEntry(handle, category, key, nil), item)
}

// Unremember removes the first exact match of item; absence is a no-op.
func (s *Service) Unremember(ctx context.Context, handle contractx.Handle, category contractx.Category, key string, item any) error {
	if err := s.checkWrite(handle, category); err != nil {
		return err
	}
	return s.store.RemoveList(ctx, handle.Scope(), category, key, item)
}

// Recall returns the owner's raw entry under Allow, the aggregated view under
// AllowAggregated (key doubles as the grouping key there), and a
// PrivacyViolation under Deny. Reads are idempotent and retried on transient
// store failure.
func (s *Service) Recall(ctx context.Context, handle contractx.Handle, category contractx.Category, key string) (RecallResult, error) {
	decision := s.engine.Decide(handle.Role(), category)
	switch decision.Kind {
	case contractx.DecisionAllow:
		var entry *Entry
		err := s.withRetry(ctx, func() error {
			var innerErr error
			entry, innerErr = s.store.Get(ctx, handle.Scope(), category, key)
			return innerErr
		})
		if errors.Is(err, ErrEntryNotFound) {
			return RecallResult{}, nil
		}
		if err != nil {
			return RecallResult{}, err
		}
		return RecallResult{Value: entry.Value, Found: true}, nil

	case contractx.DecisionAllowAggregated:
		var result contractx.AggregateResult
		err := s.withRetry(ctx, func() error {
			var innerErr error
			result, innerErr = s.aggregator.Aggregate(ctx, handle.OrganizationID(), category, key, decision.MinGroupSize)
			return innerErr
		})
		if err != nil {
			return RecallResult{}, err
		}
		return RecallResult{Aggregate: &result}, nil

	default:
		return RecallResult{}, s.deny(handle, category, "recall")
	}
}

// ForgetCategory deletes every key under the category for the owner scope.
// Irreversible.
func (s *Service) ForgetCategory(ctx context.Context, handle contractx.Handle, category contractx.Category) error {
	if err := s.checkWrite(handle, category); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, handle.Scope(), category)
}

func (s *Service) checkWrite(handle contractx.Handle, category contractx.Category) error {
	decision := s.engine.Decide(handle.Role(), category)
	if decision.Kind != contractx.DecisionAllow {
		return s.deny(handle, category, "write")
	}
	return nil
}

func (s *Service) deny(handle contractx.Handle, category contractx.Category, op string) error {
	// Audit log carries role and category, never the value.
	log.Warn().
		Str("role", string(handle.Role())).
		Str("category", string(category)).
		Str("op", op).
		Str("session_id", handle.SessionID()).
		Msg("memory access denied")
	return fmt.Errorf("%w: role=%s category=%s", contractx.ErrPrivacyViolation, handle.Role(), category)
}

func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	backoff := s.backoff
	var err error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = fn()
		if err == nil || !errors.Is(err, contractx.ErrStoreUnavailable) {
			return err
		}
	}
	return err
}

func (s *Service) ownedEntry(handle contractx.Handle, category contractx.Category, key string, value any) *Entry {
	return &Entry{
		Scope:          handle.Scope(),
		OrganizationID: handle.OrganizationID(),
		Category:       category,
		Key:            key,
		GroupingKey:    handle.Department(),
		Value:          value,
	}
}
