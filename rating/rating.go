/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package rating maps the rating difference between two players to the
// probabilities of each game outcome.
package rating

import "math"

// Chances holds outcome probabilities from the white player's point of view.
// Loss+Draw+Win is always 1.
type Chances struct {
	Loss float64
	Draw float64
	Win  float64
}

// Reverse returns the chances as seen from the other side of the board.
func (c Chances) Reverse() Chances {
	return Chances{Loss: c.Win, Draw: c.Draw, Win: c.Loss}
}

func (c Chances) Sum() float64 {
	return c.Loss + c.Draw + c.Win
}

// Model produces outcome chances for white given white's rating minus
// black's rating.
type Model interface {
	ResultChances(delta int) Chances
}

const (
	bandWidth = 100
	numBands  = 6
)

func newChances(loss, draw float64) Chances {
	return Chances{Loss: loss, Draw: draw, Win: 1 - loss - draw}
}

// stronger side's point of view; band i covers |delta| in [100*i, 100*i+99]
// and the last band is open ended
var defaultBands = [numBands]Chances{
	newChances(0.40, 0.15),
	newChances(0.25, 0.10),
	newChances(0.20, 0.10),
	newChances(0.15, 0.10),
	newChances(0.10, 0.10),
	newChances(0.05, 0.00),
}

// Table is the default banded model.
type Table struct {
	bands    [numBands]Chances
	reversed [numBands]Chances
}

// NewTable returns the default model: six bands of width 100.
func NewTable() *Table {
	t := &Table{bands: defaultBands}
	for i, c := range t.bands {
		t.reversed[i] = c.Reverse()
	}
	return t
}

// Band returns the band index for a rating difference.
func Band(delta int) int {
	if delta < 0 {
		delta = -delta
	}
	b := delta / bandWidth
	if b >= numBands {
		b = numBands - 1
	}
	return b
}

func (t *Table) ResultChances(delta int) Chances {
	if delta < 0 {
		return t.reversed[Band(delta)]
	}
	return t.bands[Band(delta)]
}

// Fixed returns the same chances for every pairing. Useful for forcing
// results in tests.
type Fixed Chances

func (f Fixed) ResultChances(delta int) Chances {
	return Chances(f)
}

// Elo derives chances from the logistic expected score used by the rating
// systems. DrawShare is the fraction of the less likely decisive outcome that
// is turned into draws; it shrinks as the gap between the players grows.
type Elo struct {
	DrawShare float64
}

const DefaultDrawShare = 0.3

// expectedScore is the 400-point logistic curve:
// 1/(10^((opp-my)/400)+1)
func expectedScore(myRating float64, oppRating float64) float64 {
	exp := math.Pow(10, (oppRating-myRating)/400.0)
	return 1.0 / (exp + 1.0)
}

func (e Elo) ResultChances(delta int) Chances {
	share := e.DrawShare
	if share < 0 {
		share = 0
	} else if share > 1 {
		share = 1
	}
	we := expectedScore(float64(delta), 0)
	// expected score is win + draw/2; keep it while moving mass into draws
	underdog := math.Min(we, 1-we)
	draw := 2 * underdog * share
	loss := 1 - we - draw/2
	return newChances(loss, draw)
}
