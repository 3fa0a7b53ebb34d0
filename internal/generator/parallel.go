package generator

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const ctxCheckInterval = 1024

// SampleBatchParallel fills a batch with several workers. Each worker owns its
// own random source derived from the sampler's; accepted passwords go into a
// shared dedup set and workers stop once n are collected. The attempt cap is
// shared by all workers. workers <= 1 runs SampleBatch.
func (s *Sampler) SampleBatchParallel(ctx context.Context, n, workers int) (Batch, error) {
	if workers <= 1 {
		return s.SampleBatch(n)
	}
	if err := s.checkBatchSize(n); err != nil {
		return Batch{}, err
	}

	start := time.Now()
	var (
		mu         sync.Mutex
		seen       = make(map[string]struct{}, n)
		passwords  = make([]string, 0, n)
		accepted   atomic.Int64
		attempts   atomic.Uint64
		duplicates atomic.Uint64
	)
	perWorker := make([]rejectionCounts, workers)
	target := int64(n)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rnd := rand.New(rand.NewSource(s.rnd.Int63()))
		counts := &perWorker[w]
		g.Go(func() error {
			buf := make([]rune, PasswordLength)
			for i := 0; accepted.Load() < target; i++ {
				if i%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if attempts.Add(1) > s.maxAttempts {
					if accepted.Load() >= target {
						return nil
					}
					mu.Lock()
					got := len(passwords)
					mu.Unlock()
					return s.exhausted(n, got, s.maxAttempts)
				}
				s.fill(rnd, buf)
				if r := s.check(buf); r != RejectNone {
					counts[r]++
					continue
				}
				pw := string(buf)

				mu.Lock()
				if len(passwords) >= n {
					mu.Unlock()
					return nil
				}
				if _, dup := seen[pw]; dup {
					mu.Unlock()
					duplicates.Add(1)
					continue
				}
				seen[pw] = struct{}{}
				passwords = append(passwords, pw)
				accepted.Store(int64(len(passwords)))
				s.report(Progress{Accepted: len(passwords), Target: n, Attempts: attempts.Load()})
				mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && len(passwords) < n {
		return Batch{}, err
	}

	var counts rejectionCounts
	for i := range perWorker {
		counts.add(&perWorker[i])
	}
	total := attempts.Load()
	if total > s.maxAttempts {
		total = s.maxAttempts
	}
	return Batch{
		Passwords: passwords,
		Stats: Stats{
			Attempts:   total,
			Accepted:   len(passwords),
			Duplicates: duplicates.Load(),
			Rejections: counts.toMap(),
			Duration:   time.Since(start),
			Workers:    workers,
		},
	}, nil
}
