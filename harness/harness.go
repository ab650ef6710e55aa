/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package harness drives a simulated tournament round by round: pair with
// the engine, optionally pair again with a second algorithm for comparison,
// then play the round out.
package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/engine"
	"github.com/mikeb26/pairingsim/simulate"
	"github.com/mikeb26/pairingsim/tournament"
)

var ErrNoPairings = errors.New("engine produced no pairings")

type Config struct {
	Rounds    int
	Algorithm engine.Algorithm
	// Compare is a second algorithm run on the same state every round;
	// empty disables comparison.
	Compare engine.Algorithm
}

func (c Config) validate() error {
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive; got %d", c.Rounds)
	}
	if c.Algorithm == "" {
		return fmt.Errorf("no pairing algorithm")
	}
	return nil
}

// RoundReport describes one completed round.
type RoundReport struct {
	Round     int
	Algorithm engine.Algorithm
	Pairings  []tournament.Pairing
	Elapsed   time.Duration

	Compare         engine.Algorithm
	ComparePairings []tournament.Pairing
	// Compared is false when no comparison ran or it failed.
	Compared   bool
	Similarity float64
}

// Summary is the outcome of one tournament.
type Summary struct {
	Trial         int
	RoundsPlanned int
	Rounds        []RoundReport
	// Players is the final roster state.
	Players []tournament.Player
	// Halt is the error that stopped the tournament early, if any.
	Halt error
}

func (s *Summary) RoundsPlayed() int {
	return len(s.Rounds)
}

func (s *Summary) Completed() bool {
	return s.Halt == nil && len(s.Rounds) == s.RoundsPlanned
}

// Reporter is notified as a tournament progresses.
type Reporter interface {
	RoundCompleted(ctx context.Context, trial int, rr RoundReport)
	TournamentFinished(ctx context.Context, s *Summary)
}

type Orchestrator struct {
	Config    Config
	Trial     int
	Registry  *tournament.Registry
	Pairer    engine.Pairer
	Simulator *simulate.Simulator
	Reporter  Reporter
	Logger    *zap.Logger
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Run plays rounds 1..Config.Rounds. It stops at the first round the
// primary algorithm cannot pair; that error is returned alongside the
// summary and no results are applied for the failed round.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	if err := o.Config.validate(); err != nil {
		return nil, fmt.Errorf("harness.run: %w", err)
	}
	summary := &Summary{Trial: o.Trial, RoundsPlanned: o.Config.Rounds}
	defer func() {
		summary.Players = o.Registry.Players()
		if o.Reporter != nil {
			o.Reporter.TournamentFinished(ctx, summary)
		}
	}()

	for round := 1; round <= o.Config.Rounds; round++ {
		rr, err := o.playRound(ctx, round)
		if err != nil {
			summary.Halt = err
			o.logger().Error("harness.run: halting tournament",
				zap.Int("trial", o.Trial),
				zap.Int("round", round),
				zap.Error(err))
			return summary, err
		}
		summary.Rounds = append(summary.Rounds, rr)
		if o.Reporter != nil {
			o.Reporter.RoundCompleted(ctx, o.Trial, rr)
		}
	}

	return summary, nil
}

func (o *Orchestrator) playRound(ctx context.Context,
	round int) (RoundReport, error) {

	rr := RoundReport{Round: round, Algorithm: o.Config.Algorithm}
	if err := ctx.Err(); err != nil {
		return rr, fmt.Errorf("harness: round %d: %w", round, err)
	}

	start := time.Now()
	primary, err := o.Pairer.Pair(ctx, round, o.Config.Algorithm,
		o.Registry.Players())
	rr.Elapsed = time.Since(start)
	if err != nil {
		return rr, fmt.Errorf("harness: round %d: %w", round, err)
	}
	if len(primary) == 0 {
		return rr, fmt.Errorf("harness: round %d %v: %w", round,
			o.Config.Algorithm, ErrNoPairings)
	}
	rr.Pairings = primary

	if o.Config.Compare != "" {
		rr.Compare = o.Config.Compare
		// a fresh snapshot; the registry is not touched until both have run
		other, err := o.Pairer.Pair(ctx, round, o.Config.Compare,
			o.Registry.Players())
		if err != nil {
			o.logger().Warn("harness.round: comparison pairing failed",
				zap.Int("trial", o.Trial),
				zap.Int("round", round),
				zap.Stringer("algorithm", o.Config.Compare),
				zap.Error(err))
		} else if len(other) > 0 {
			rr.ComparePairings = other
			rr.Compared = true
			rr.Similarity = Similarity(primary, other)
		}
	}

	if err := o.Simulator.Simulate(o.Registry, primary); err != nil {
		return rr, fmt.Errorf("harness: round %d: %w", round, err)
	}
	if err := o.Registry.Validate(); err != nil {
		return rr, fmt.Errorf("harness: round %d: %w", round, err)
	}

	return rr, nil
}
