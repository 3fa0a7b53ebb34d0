package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/legipwd/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "legipwd.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		run := model.RunStats{
			StartedAt:  start,
			EndedAt:    start.Add(20 * time.Millisecond),
			Requested:  30,
			Accepted:   30,
			Attempts:   int64(900 + i),
			Duplicates: 0,
			Workers:    1,
			DurationMs: 20,
		}
		rules := []model.RuleStats{
			{Rule: "repeated", Count: 600},
			{Rule: "prefix-coverage", Count: int64(250 + i)},
		}
		id, err := st.InsertRun(ctx, run, rules)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].RunID != ids[0] || runs[2].RunID != ids[2] {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if runs[1].Attempts != 901 || runs[1].Accepted != 30 {
		t.Fatalf("unexpected run values: %+v", runs[1])
	}
	if !runs[0].EndedAt.Equal(base.Add(20 * time.Millisecond)) {
		t.Fatalf("unexpected ended_at: %v", runs[0].EndedAt)
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListRuns(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list recent runs: %v", err)
	}
	if len(recent) != 1 || recent[0].RunID != ids[2] {
		t.Fatalf("expected only the last run, got %+v", recent)
	}

	aggs, err := st.ListRuleAggregatesForRuns(ctx, ids[:2])
	if err != nil {
		t.Fatalf("list rule aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(aggs))
	}
	if aggs[0].Rule != "prefix-coverage" || aggs[0].Count != 501 {
		t.Fatalf("unexpected prefix aggregate: %+v", aggs[0])
	}
	if aggs[1].Rule != "repeated" || aggs[1].Count != 1200 {
		t.Fatalf("unexpected repeated aggregate: %+v", aggs[1])
	}
}

func TestListRuleAggregatesEmpty(t *testing.T) {
	st := openTestStore(t)
	aggs, err := st.ListRuleAggregatesForRuns(context.Background(), nil)
	if err != nil {
		t.Fatalf("list rule aggregates: %v", err)
	}
	if aggs != nil {
		t.Fatalf("expected nil aggregates, got %+v", aggs)
	}
}

func TestInsertRunWithoutRules(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()
	id, err := st.InsertRun(context.Background(), model.RunStats{StartedAt: now, EndedAt: now, Requested: 1, Accepted: 1, Attempts: 1, Workers: 1}, nil)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected run id")
	}
}
