package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"meal-scheduler/internal/llm"
	metricsdb "meal-scheduler/internal/metrics/metrics_db"
)

// ExecutionMetric records metadata for a single model call.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// GenerationMetric records one allocation run.
type GenerationMetric struct {
	UserID         string
	SlotsRequested int
	SlotsFilled    int
	LatencyMS      int64
	Timestamp      time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	queries *metricsdb.Queries
	db      *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		db:      db,
	}
}

// Record saves a metric to the database.
func (s *Store) Record(m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return s.queries.InsertExecutionMetric(context.Background(), metricsdb.InsertExecutionMetricParams{
		AgentName:        m.AgentName,
		Model:            m.Model,
		PromptTokens:     int64(m.PromptTokens),
		CompletionTokens: int64(m.CompletionTokens),
		LatencyMs:        m.LatencyMS,
		Timestamp:        ts,
	})
}

// RecordMeta records metrics directly from llm.AgentMeta.
func (s *Store) RecordMeta(meta llm.AgentMeta) error {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(MapUsage(meta.AgentName, meta.Usage, meta.Latency))
}

// RecordGeneration saves the outcome of an allocation run.
func (s *Store) RecordGeneration(ctx context.Context, m GenerationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return s.queries.InsertGenerationMetric(ctx, metricsdb.InsertGenerationMetricParams{
		UserID:         m.UserID,
		SlotsRequested: int64(m.SlotsRequested),
		SlotsFilled:    int64(m.SlotsFilled),
		LatencyMs:      m.LatencyMS,
		Timestamp:      ts,
	})
}

// DailyUsage represents generation and token totals for a single day.
type DailyUsage struct {
	Date           string
	Runs           int
	SlotsRequested int
	SlotsFilled    int
	Executions     int
	Tokens         int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	ctx := context.Background()
	since := time.Now().UTC().AddDate(0, 0, -days)

	byDay := make(map[string]*DailyUsage)
	get := func(day interface{}) *DailyUsage {
		date := dayString(day)
		u, ok := byDay[date]
		if !ok {
			u = &DailyUsage{Date: date}
			byDay[date] = u
		}
		return u
	}

	genRows, err := s.queries.GetDailyGenerationUsage(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation usage: %w", err)
	}
	for _, r := range genRows {
		u := get(r.Day)
		u.Runs = int(r.Runs)
		if r.Requested.Valid {
			u.SlotsRequested = int(r.Requested.Float64)
		}
		if r.Filled.Valid {
			u.SlotsFilled = int(r.Filled.Float64)
		}
	}

	tokenRows, err := s.queries.GetDailyTokenUsage(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get token usage: %w", err)
	}
	for _, r := range tokenRows {
		u := get(r.Day)
		u.Executions = int(r.Executions)
		if r.Tokens.Valid {
			u.Tokens = int(r.Tokens.Float64)
		}
	}

	results := make([]DailyUsage, 0, len(byDay))
	for _, u := range byDay {
		results = append(results, *u)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date > results[j].Date })
	return results, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	ctx := context.Background()
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	execs, err := s.queries.CleanupExecutionMetrics(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean execution metrics: %w", err)
	}
	gens, err := s.queries.CleanupGenerationMetrics(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean generation metrics: %w", err)
	}
	return execs + gens, nil
}

// MapUsage helper to convert llm.TokenUsage to ExecutionMetric.
func MapUsage(agentName string, usage llm.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}

func dayString(v interface{}) string {
	switch d := v.(type) {
	case string:
		return d
	case []byte:
		return string(d)
	}
	return "Unknown"
}
