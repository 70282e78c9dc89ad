package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

type entryRow struct {
	bun.BaseModel `bun:"table:memory_entries,alias:me"`

	Scope          string          `bun:"scope,pk"`
	Category       string          `bun:"category,pk"`
	Key            string          `bun:"key,pk"`
	OrganizationID string          `bun:"organization_id,notnull"`
	GroupingKey    string          `bun:"grouping_key"`
	Value          json.RawMessage `bun:"value,type:jsonb"`
	UpdatedAt      time.Time       `bun:"updated_at,notnull"`
}

// BunStore persists entries in Postgres through bun. Same-key writers are
// serialized by row locks; list mutations run read-modify-write inside one
// transaction with SELECT ... FOR UPDATE.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewBunStore(cfg PostgresConfig) (*BunStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunStore{db: db, now: time.Now}, nil
}

// Init creates the backing table. Call once at boot.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*entryRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return storeErr("create memory_entries", err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) Get(ctx context.Context, scope string, category contractx.Category, key string) (*Entry, error) {
	row := new(entryRow)
	err := s.db.NewSelect().
		Model(row).
		Where("scope = ?", scope).
		Where("category = ?", string(category)).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, storeErr("get entry", err)
	}
	return rowToEntry(row)
}

func (s *BunStore) Put(ctx context.Context, entry *Entry) error {
	row, err := entryToRow(entry, s.now().UTC())
	if err != nil {
		return err
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (scope, category, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("grouping_key = EXCLUDED.grouping_key").
		Set("organization_id = EXCLUDED.organization_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return storeErr("put entry", err)
	}
	return nil
}

func (s *BunStore) Delete(ctx context.Context, scope string, category contractx.Category, key string) error {
	_, err := s.db.NewDelete().
		Model((*entryRow)(nil)).
		Where("scope = ?", scope).
		Where("category = ?", string(category)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return storeErr("delete entry", err)
	}
	return nil
}

func (s *BunStore) DeleteCategory(ctx context.Context, scope string, category contractx.Category) error {
	_, err := s.db.NewDelete().
		Model((*entryRow)(nil)).
		Where("scope = ?", scope).
		Where("category = ?", string(category)).
		Exec(ctx)
	if err != nil {
		return storeErr("delete category", err)
	}
	return nil
}

func (s *BunStore) AppendList(ctx context.Context, entry *Entry, item any) error {
	return s.mutateList(ctx, entry, true, func(list []any) ([]any, error) {
		return append(list, item), nil
	})
}

func (s *BunStore) RemoveList(ctx context.Context, scope string, category contractx.Category, key string, item any) error {
	probe := &Entry{Scope: scope, Category: category, Key: key}
	return s.mutateList(ctx, probe, false, func(list []any) ([]any, error) {
		for i, candidate := range list {
			if reflect.DeepEqual(candidate, item) {
				return append(append([]any{}, list[:i]...), list[i+1:]...), nil
			}
		}
		return list, nil
	})
}

func (s *BunStore) mutateList(ctx context.Context, entry *Entry, createIfMissing bool, mutate func([]any) ([]any, error)) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := new(entryRow)
		err := tx.NewSelect().
			Model(row).
			Where("scope = ?", entry.Scope).
			Where("category = ?", string(entry.Category)).
			Where("key = ?", entry.Key).
			For("UPDATE").
			Scan(ctx)
		exists := true
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			exists = false
		}

		if !exists && !createIfMissing {
			return nil
		}

		var list []any
		if exists && len(row.Value) > 0 {
			var decoded any
			if err := json.Unmarshal(row.Value, &decoded); err != nil {
				return fmt.Errorf("decode list value: %w", err)
			}
			typed, ok := decoded.([]any)
			if !ok {
				return ErrNotAList
			}
			list = typed
		}

		next, err := mutate(list)
		if err != nil {
			return err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode list value: %w", err)
		}

		out := &entryRow{
			Scope:          entry.Scope,
			Category:       string(entry.Category),
			Key:            entry.Key,
			OrganizationID: entry.OrganizationID,
			GroupingKey:    entry.GroupingKey,
			Value:          raw,
			UpdatedAt:      s.now().UTC(),
		}
		if exists {
			out.OrganizationID = row.OrganizationID
			out.GroupingKey = row.GroupingKey
		}

		_, err = tx.NewInsert().
			Model(out).
			On("CONFLICT (scope, category, key) DO UPDATE").
			Set("value = EXCLUDED.value").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotAList) {
			return ErrNotAList
		}
		return storeErr("mutate list", err)
	}
	return nil
}

func (s *BunStore) Scan(ctx context.Context, organizationID string, category contractx.Category, groupingKey string) ([]Entry, error) {
	var rows []entryRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("organization_id = ?", organizationID).
		Where("category = ?", string(category))
	if groupingKey != "" {
		q = q.Where("grouping_key = ?", groupingKey)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storeErr("scan entries", err)
	}

	out := make([]Entry, 0, len(rows))
	for i := range rows {
		entry, err := rowToEntry(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, nil
}

func entryToRow(entry *Entry, now time.Time) (*entryRow, error) {
	raw, err := json.Marshal(entry.Value)
	if err != nil {
		return nil, fmt.Errorf("encode entry value: %w", err)
	}
	return &entryRow{
		Scope:          entry.Scope,
		Category:       string(entry.Category),
		Key:            entry.Key,
		OrganizationID: entry.OrganizationID,
		GroupingKey:    entry.GroupingKey,
		Value:          raw,
		UpdatedAt:      now,
	}, nil
}

func rowToEntry(row *entryRow) (*Entry, error) {
	var value any
	if len(row.Value) > 0 {
		if err := json.Unmarshal(row.Value, &value); err != nil {
			return nil, fmt.Errorf("decode entry value: %w", err)
		}
	}
	return &Entry{
		Scope:          row.Scope,
		OrganizationID: row.OrganizationID,
		Category:       contractx.Category(row.Category),
		Key:            row.Key,
		GroupingKey:    row.GroupingKey,
		Value:          value,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", contractx.ErrStoreUnavailable, op, err)
}
