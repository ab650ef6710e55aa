/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package report

import (
	"context"

	"github.com/mikeb26/pairingsim/harness"
)

// Multi forwards every event to each reporter in order.
type Multi []harness.Reporter

func (m Multi) RoundCompleted(ctx context.Context, trial int,
	rr harness.RoundReport) {
	for _, r := range m {
		r.RoundCompleted(ctx, trial, rr)
	}
}

func (m Multi) TournamentFinished(ctx context.Context, s *harness.Summary) {
	for _, r := range m {
		r.TournamentFinished(ctx, s)
	}
}

// TrialsFinished reaches the reporters that also implement StatsReporter.
func (m Multi) TrialsFinished(ctx context.Context, st harness.Stats) {
	for _, r := range m {
		if sr, ok := r.(StatsReporter); ok {
			sr.TrialsFinished(ctx, st)
		}
	}
}
