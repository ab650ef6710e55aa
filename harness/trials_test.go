/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package harness

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeb26/pairingsim/engine"
	"github.com/mikeb26/pairingsim/tournament"
)

func TestRunTrials(t *testing.T) {
	var running, peak atomic.Int32
	run := func(ctx context.Context, trial int) (*Summary, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		reg := newRegistry(t, 2400, 2200, 2000, 1800)
		pairer := &fakePairer{script: map[engine.Algorithm]func(int) ([]tournament.Pairing, error){
			engine.Fast: fixedPairings(
				tournament.Pairing{White: 1, Black: 2},
				tournament.Pairing{White: 3, Black: 4}),
			engine.Dutch: fixedPairings(
				tournament.Pairing{White: 1, Black: 2},
				tournament.Pairing{White: 4, Black: 3}),
		}}
		o := &Orchestrator{
			Config: Config{Rounds: 3, Algorithm: engine.Fast,
				Compare: engine.Dutch},
			Trial:     trial,
			Registry:  reg,
			Pairer:    pairer,
			Simulator: whiteAlwaysWins(),
		}
		return o.Run(ctx)
	}

	results, err := RunTrials(context.Background(), 6, 2, run)
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, i+1, res.Summary.Trial)
	}

	st := Aggregate(results)
	assert.Equal(t, 6, st.Trials)
	assert.Equal(t, 6, st.Completed)
	assert.Zero(t, st.Halted)
	require.Len(t, st.Rounds, 3)
	for _, rs := range st.Rounds {
		assert.Equal(t, 6, rs.Played)
		assert.Equal(t, 6, rs.Compared)
		assert.InDelta(t, 0.5, rs.MeanSimilarity, 1e-12)
		assert.Equal(t, 0.5, rs.MinSimilarity)
		assert.Equal(t, 0.5, rs.MaxSimilarity)
	}
}

func TestRunTrialsKeepsGoingAfterHalt(t *testing.T) {
	halt := errors.New("engine gave up")
	run := func(ctx context.Context, trial int) (*Summary, error) {
		if trial == 2 {
			return &Summary{Trial: trial, RoundsPlanned: 3, Halt: halt}, halt
		}
		return &Summary{Trial: trial, RoundsPlanned: 1,
			Rounds: []RoundReport{{Round: 1}}}, nil
	}

	results, err := RunTrials(context.Background(), 3, 1, run)
	require.NoError(t, err)
	assert.ErrorIs(t, results[1].Err, halt)
	assert.NoError(t, results[2].Err)

	st := Aggregate(results)
	assert.Equal(t, 2, st.Completed)
	assert.Equal(t, 1, st.Halted)
	require.Len(t, st.Rounds, 1)
	assert.Equal(t, 2, st.Rounds[0].Played)
	assert.Zero(t, st.Rounds[0].Compared)
}

func TestRunTrialsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := RunTrials(ctx, 2, 1, func(ctx context.Context,
		trial int) (*Summary, error) {
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 2)
}

func TestRunTrialsRejectsZero(t *testing.T) {
	_, err := RunTrials(context.Background(), 0, 1, nil)
	assert.Error(t, err)
}
