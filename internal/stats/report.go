// Package stats builds reports from recorded generation runs.
package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/verte-zerg/legipwd/internal/model"
	"github.com/verte-zerg/legipwd/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs     []model.RunAggregate
	Rules    []model.RuleAggregate
	Accepted int
	Attempts int64
	Duration time.Duration
	Rejected int64
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}

	rules, err := st.ListRuleAggregatesForRuns(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Count == rules[j].Count {
			return rules[i].Rule < rules[j].Rule
		}
		return rules[i].Count > rules[j].Count
	})

	report := Report{Runs: runs, Rules: rules}
	for _, r := range runs {
		report.Accepted += r.Accepted
		report.Attempts += r.Attempts
		report.Duration += time.Duration(r.DurationMs) * time.Millisecond
	}
	for _, r := range rules {
		report.Rejected += r.Count
	}
	return report, nil
}

// RunMetrics returns the acceptance rate and accepted passwords per second.
func RunMetrics(accepted int, attempts, durationMs int64) (rate, perSecond float64) {
	if attempts > 0 {
		rate = float64(accepted) / float64(attempts)
	}
	if durationMs > 0 {
		perSecond = float64(accepted) / (float64(durationMs) / 1000.0)
	}
	return rate, perSecond
}

// Render writes the report as plain text tables.
func Render(w io.Writer, report Report) error {
	if len(report.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded. Generate with --record to collect stats.")
		return err
	}

	rate, _ := RunMetrics(report.Accepted, report.Attempts, 0)
	lines := []string{
		fmt.Sprintf("Runs: %d  Passwords: %d  Attempts: %d  Acceptance: %s  Time: %s",
			len(report.Runs), report.Accepted, report.Attempts, percent(rate), report.Duration.Round(time.Millisecond)),
		"",
	}

	rows := make([][]string, 0, len(report.Runs))
	for _, r := range report.Runs {
		rate, perSecond := RunMetrics(r.Accepted, r.Attempts, r.DurationMs)
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", r.Accepted),
			fmt.Sprintf("%d", r.Attempts),
			percent(rate),
			fmt.Sprintf("%d", r.Workers),
			fmt.Sprintf("%dms", r.DurationMs),
			fmt.Sprintf("%.0f", perSecond),
		})
	}
	lines = append(lines, formatTable(
		[]string{"Ended", "Passwords", "Attempts", "Accepted", "Workers", "Time", "Pw/s"},
		rows,
		map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true},
	)...)

	if len(report.Rules) > 0 {
		lines = append(lines, "")
		ruleRows := make([][]string, 0, len(report.Rules))
		for _, r := range report.Rules {
			share := 0.0
			if report.Rejected > 0 {
				share = float64(r.Count) / float64(report.Rejected)
			}
			ruleRows = append(ruleRows, []string{r.Rule, percent(share), fmt.Sprintf("%d", r.Count)})
		}
		lines = append(lines, formatTable([]string{"Rule", "Share", "Count"}, ruleRows, map[int]bool{1: true, 2: true})...)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}
