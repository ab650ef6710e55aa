/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package harness

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// TrialFunc runs one independent tournament. Trials must not share a
// registry or scratch directory.
type TrialFunc func(ctx context.Context, trial int) (*Summary, error)

type TrialResult struct {
	Summary *Summary
	Err     error
}

// RunTrials runs trials tournaments, at most parallel at a time. A halted
// tournament is recorded in its result and does not stop the others;
// cancelling ctx does.
func RunTrials(ctx context.Context, trials int, parallel int,
	run TrialFunc) ([]TrialResult, error) {

	if trials <= 0 {
		return nil, fmt.Errorf("harness.trials: trials must be positive; got %d",
			trials)
	}
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]TrialResult, trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := 0; i < trials; i++ {
		trial := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[trial-1] = TrialResult{Err: err}
				return err
			}
			summary, err := run(gctx, trial)
			results[trial-1] = TrialResult{Summary: summary, Err: err}
			if errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}

	return results, g.Wait()
}

// RoundStats aggregates one round across trials.
type RoundStats struct {
	Round          int
	Played         int
	Compared       int
	MeanSimilarity float64
	MinSimilarity  float64
	MaxSimilarity  float64
}

type Stats struct {
	Trials    int
	Completed int
	Halted    int
	Rounds    []RoundStats
}

// Aggregate summarises trial results round by round.
func Aggregate(results []TrialResult) Stats {
	st := Stats{Trials: len(results)}
	for _, res := range results {
		s := res.Summary
		if s == nil {
			st.Halted++
			continue
		}
		if s.Completed() {
			st.Completed++
		} else {
			st.Halted++
		}
		for _, rr := range s.Rounds {
			for len(st.Rounds) < rr.Round {
				st.Rounds = append(st.Rounds,
					RoundStats{Round: len(st.Rounds) + 1})
			}
			rs := &st.Rounds[rr.Round-1]
			rs.Played++
			if !rr.Compared {
				continue
			}
			if rs.Compared == 0 || rr.Similarity < rs.MinSimilarity {
				rs.MinSimilarity = rr.Similarity
			}
			if rs.Compared == 0 || rr.Similarity > rs.MaxSimilarity {
				rs.MaxSimilarity = rr.Similarity
			}
			// running mean
			rs.Compared++
			rs.MeanSimilarity += (rr.Similarity - rs.MeanSimilarity) /
				float64(rs.Compared)
		}
	}

	return st
}
