// Package model defines shared data structures.
package model

import "time"

// Config defines generation and output settings after merging file and flags.
type Config struct {
	Workers     int
	MaxAttempts int
	Seed        int64
	Record      bool
	Color       string
	Columns     bool
	Banner      bool
	Progress    bool
	LogFormat   string
	Verbose     bool
}

// StatsConfig defines filters for the stats report.
type StatsConfig struct {
	Since *time.Time
	Last  int
}

// RunStats captures one completed generation run. Passwords are never part
// of it.
type RunStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Requested  int
	Accepted   int
	Attempts   int64
	Duplicates int64
	Workers    int
	DurationMs int64
}

// RuleStats stores how often a rule rejected candidates in a run.
type RuleStats struct {
	Rule  string
	Count int64
}

// RunAggregate summarizes a run for reporting.
type RunAggregate struct {
	RunID      int64
	EndedAt    time.Time
	Accepted   int
	Attempts   int64
	Duplicates int64
	Workers    int
	DurationMs int64
}

// RuleAggregate aggregates rule rejections across runs.
type RuleAggregate struct {
	Rule  string
	Count int64
}
