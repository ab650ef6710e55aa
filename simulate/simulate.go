/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package simulate plays out a round of pairings by drawing a random result
// for every board from the rating model.
package simulate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/rating"
	"github.com/mikeb26/pairingsim/tournament"
)

// Simulator is the only writer of a tournament.Registry.
type Simulator struct {
	Model  rating.Model
	Source Source
	Logger *zap.Logger
}

// New returns a simulator using the default rating table and CryptoSource.
func New(logger *zap.Logger) *Simulator {
	return &Simulator{
		Model:  rating.NewTable(),
		Source: CryptoSource{},
		Logger: logger,
	}
}

func (s *Simulator) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Outcome picks white's score for a sample r in [0,1). Samples equal to a
// threshold fall into the next band.
func Outcome(c rating.Chances, r float64) float64 {
	if r < c.Loss {
		return tournament.ScoreLoss
	}
	if r < c.Loss+c.Draw {
		return tournament.ScoreDraw
	}
	return tournament.ScoreWin
}

// Simulate applies one result per pairing to reg. The pairings are checked
// up front so an invalid round leaves reg untouched.
func (s *Simulator) Simulate(reg *tournament.Registry,
	pairings []tournament.Pairing) error {

	if err := reg.CheckPairings(pairings); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	for _, p := range pairings {
		if p.IsBye() {
			if err := reg.RecordBye(p.White); err != nil {
				return fmt.Errorf("simulate: %w", err)
			}
			continue
		}

		white, _ := reg.Player(p.White)
		black, _ := reg.Player(p.Black)
		chances := s.Model.ResultChances(white.Rating - black.Rating)
		score := Outcome(chances, s.Source.Float64())
		if err := reg.RecordGame(p.White, p.Black, score); err != nil {
			return fmt.Errorf("simulate: %w", err)
		}

		s.logger().Debug("simulate: game",
			zap.Int("white", p.White),
			zap.Int("black", p.Black),
			zap.Float64("whiteScore", score))
	}

	return nil
}
