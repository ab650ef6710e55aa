/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

type Color int

const (
	NoColor Color = iota
	White
	Black
)

// Code returns the single character exchange code for the color.
func (c Color) Code() byte {
	switch c {
	case White:
		return 'w'
	case Black:
		return 'b'
	default:
		return '-'
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

const (
	ScoreLoss = 0.0
	ScoreDraw = 0.5
	ScoreWin  = 1.0
	ScoreBye  = ScoreWin
)

// Game is one player's record of a single round. Opponent 0 means the
// player had no opponent (a bye).
type Game struct {
	Opponent int
	Color    Color
	Score    float64
}

func (g Game) IsBye() bool {
	return g.Opponent == 0
}

// Player is a roster member. Num is the 1-based pairing number.
type Player struct {
	Num    int
	Name   string
	Rating int
	Score  float64
	Games  []Game
}

func (p Player) clone() Player {
	p.Games = append([]Game(nil), p.Games...)
	return p
}

// Pairing is one board produced by the pairing engine. Black 0 means White
// receives a bye.
type Pairing struct {
	White int
	Black int
}

func (p Pairing) IsBye() bool {
	return p.Black == 0
}

// Entry is a player as supplied by a roster source, before numbering.
type Entry struct {
	Name   string
	Rating int
}
