package generator

import "time"

// Batch is a set of distinct valid passwords and the cost of producing it.
type Batch struct {
	Passwords []string
	Stats     Stats
}

// Stats describes one batch run.
type Stats struct {
	Attempts   uint64
	Accepted   int
	Duplicates uint64
	Rejections map[Rejection]uint64
	Duration   time.Duration
	Workers    int
}

// AcceptanceRate returns accepted candidates per attempt.
func (s Stats) AcceptanceRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Attempts)
}

type rejectionCounts [rejectionKinds]uint64

func (c *rejectionCounts) add(other *rejectionCounts) {
	for i := range c {
		c[i] += other[i]
	}
}

func (c *rejectionCounts) toMap() map[Rejection]uint64 {
	out := make(map[Rejection]uint64, len(c))
	for _, r := range Rejections() {
		if c[r] > 0 {
			out[r] = c[r]
		}
	}
	return out
}
