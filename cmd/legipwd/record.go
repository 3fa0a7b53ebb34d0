package main

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/verte-zerg/legipwd/internal/generator"
	"github.com/verte-zerg/legipwd/internal/model"
	"github.com/verte-zerg/legipwd/internal/store"
)

func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, oops.
			Code("STORE_OPEN_FAILED").
			With("path", path).
			Wrap(err)
	}
	return st, nil
}

// recordRun persists the counters of a finished batch. Passwords are never
// written.
func recordRun(ctx context.Context, path string, startedAt time.Time, requested int, st generator.Stats) (err error) {
	db, err := openStore(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	run, rules := runStats(startedAt, requested, st)
	if _, err := db.InsertRun(ctx, run, rules); err != nil {
		return oops.With("path", path).Wrapf(err, "insert run")
	}
	return nil
}

func runStats(startedAt time.Time, requested int, st generator.Stats) (model.RunStats, []model.RuleStats) {
	run := model.RunStats{
		StartedAt:  startedAt,
		EndedAt:    startedAt.Add(st.Duration),
		Requested:  requested,
		Accepted:   st.Accepted,
		Attempts:   int64(st.Attempts),
		Duplicates: int64(st.Duplicates),
		Workers:    st.Workers,
		DurationMs: st.Duration.Milliseconds(),
	}
	var rules []model.RuleStats
	for _, r := range generator.Rejections() {
		if n := st.Rejections[r]; n > 0 {
			rules = append(rules, model.RuleStats{Rule: r.String(), Count: int64(n)})
		}
	}
	return run, rules
}
