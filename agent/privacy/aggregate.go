// Package privacy holds the anonymization/aggregation engine: the single
// mechanism by which HR and employer roles ever observe employee-scoped data.
package privacy

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
)

// Scanner is the slice of the memory store the engine needs: raw per-owner
// records under one organization and category.
type Scanner interface {
	Scan(ctx context.Context, organizationID string, category contractx.Category, groupingKey string) ([]memoryx.Entry, error)
}

type Config struct {
	Salt string `envconfig:"SALT" split_words:"true"`
}

// DefaultStatistics maps each category to the statistic its aggregates
// report. Deployment-specific; this is the shipped default.
func DefaultStatistics() map[contractx.Category]contractx.Statistic {
	return map[contractx.Category]contractx.Statistic{
		contractx.CategorySymptomLog:           contractx.StatCount,
		contractx.CategoryAccommodationHistory: contractx.StatCount,
		contractx.CategoryPreferences:          contractx.StatCount,
		contractx.CategoryPolicyLog:            contractx.StatCount,
		contractx.CategoryROIMetrics:           contractx.StatMean,
		contractx.CategoryWellnessTips:         contractx.StatCount,
	}
}

type Aggregator struct {
	scanner Scanner
	stats   map[contractx.Category]contractx.Statistic
	salt    string
	now     func() time.Time
}

func NewAggregator(scanner Scanner, stats map[contractx.Category]contractx.Statistic, cfg Config) (*Aggregator, error) {
	if scanner == nil {
		return nil, errors.New("scanner is required")
	}
	if len(stats) == 0 {
		stats = DefaultStatistics()
	}
	salt := cfg.Salt
	if salt == "" {
		generated, err := randomSalt()
		if err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		salt = generated
	}
	return &Aggregator{
		scanner: scanner,
		stats:   stats,
		salt:    salt,
		now:     time.Now,
	}, nil
}

// Aggregate collects entries under (organization, category, groupingKey),
// computes the category's statistic, and emits a record only when the number
// of distinct contributing owners reaches minGroupSize. Below the threshold
// the result is InsufficientData, never a partial value. Zero contributors is
// InsufficientData too: "no signal" is deliberately indistinguishable from
// "too few to disclose".
func (a *Aggregator) Aggregate(ctx context.Context, organizationID string, category contractx.Category, groupingKey string, minGroupSize int) (contractx.AggregateResult, error) {
	if minGroupSize <= 0 {
		return contractx.AggregateResult{}, fmt.Errorf("%w: min group size must be positive", contractx.ErrValidation)
	}

	entries, err := a.scanner.Scan(ctx, organizationID, category, groupingKey)
	if err != nil {
		return contractx.AggregateResult{}, err
	}

	// Owner IDs are salted-hashed before grouping so raw scopes never sit in
	// the engine's working set.
	contributors := make(map[string]struct{}, len(entries))
	var points []point
	for i := range entries {
		contributors[a.hashScope(entries[i].Scope)] = struct{}{}
		points = append(points, extractPoints(&entries[i])...)
	}

	if len(contributors) == 0 || len(contributors) < minGroupSize {
		return contractx.Insufficient(), nil
	}

	stat, ok := a.stats[category]
	if !ok {
		stat = contractx.StatCount
	}

	value, err := compute(stat, points)
	if err != nil {
		return contractx.AggregateResult{}, err
	}

	return contractx.Aggregated(contractx.AggregateRecord{
		OrganizationID:    organizationID,
		Category:          category,
		GroupingKey:       groupingKey,
		Statistic:         stat,
		Value:             value,
		ContributingCount: len(contributors),
		Period:            periodFor(points, a.now),
	}), nil
}

func (a *Aggregator) hashScope(scope string) string {
	sum := sha256.Sum256([]byte(scope + a.salt))
	return hex.EncodeToString(sum[:])
}

type point struct {
	at    time.Time
	value float64
	// numeric reports whether value carries a measurement or the point only
	// counts toward volume.
	numeric bool
}

// extractPoints flattens one entry into data points. Lists contribute one
// point per element; numeric payloads (bare numbers, or objects with a
// severity/rating/value/score field) carry a measurement.
func extractPoints(entry *memoryx.Entry) []point {
	switch v := entry.Value.(type) {
	case []any:
		out := make([]point, 0, len(v))
		for _, item := range v {
			out = append(out, itemPoint(item, entry.UpdatedAt))
		}
		return out
	default:
		return []point{itemPoint(entry.Value, entry.UpdatedAt)}
	}
}

func itemPoint(item any, at time.Time) point {
	if f, ok := numericValue(item); ok {
		return point{at: at, value: f, numeric: true}
	}
	return point{at: at}
}

func numericValue(item any) (float64, bool) {
	switch v := item.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case map[string]any:
		for _, field := range []string{"severity", "rating", "value", "score"} {
			if nested, ok := v[field]; ok {
				return numericValue(nested)
			}
		}
	}
	return 0, false
}

func compute(stat contractx.Statistic, points []point) (float64, error) {
	switch stat {
	case contractx.StatCount:
		return float64(len(points)), nil

	case contractx.StatMean:
		var sum float64
		var n int
		for _, p := range points {
			if p.numeric {
				sum += p.value
				n++
			}
		}
		if n == 0 {
			return 0, nil
		}
		return sum / float64(n), nil

	case contractx.StatTrend:
		return trendSlope(points), nil

	default:
		return 0, fmt.Errorf("%w: unknown statistic %q", contractx.ErrValidation, stat)
	}
}

// trendSlope is a least-squares slope in value units per day.
func trendSlope(points []point) float64 {
	var numeric []point
	for _, p := range points {
		if p.numeric {
			numeric = append(numeric, p)
		}
	}
	if len(numeric) < 2 {
		return 0
	}
	sort.Slice(numeric, func(i, j int) bool { return numeric[i].at.Before(numeric[j].at) })

	origin := numeric[0].at
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range numeric {
		x := p.at.Sub(origin).Hours() / 24
		sumX += x
		sumY += p.value
		sumXY += x * p.value
		sumXX += x * x
	}
	n := float64(len(numeric))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func periodFor(points []point, now func() time.Time) string {
	if len(points) == 0 {
		return now().UTC().Format("2006-01")
	}
	min, max := points[0].at, points[0].at
	for _, p := range points[1:] {
		if p.at.Before(min) {
			min = p.at
		}
		if p.at.After(max) {
			max = p.at
		}
	}
	start, end := min.UTC().Format("2006-01"), max.UTC().Format("2006-01")
	if start == end {
		return start
	}
	return start + ".." + end
}

func randomSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
