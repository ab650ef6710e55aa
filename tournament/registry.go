/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package tournament holds the simulated roster: each player's rating,
// cumulative score and per-round game history.
//
// A Registry has a single writer. The outcome simulator is the only caller of
// RecordGame and RecordBye; everything else reads snapshots returned by
// Players and Player, which never alias registry state.
package tournament

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrUnpairedPlayer = errors.New("player missing from pairings")
)

type Registry struct {
	players []Player
}

// NewRegistry sorts the entries by descending rating and numbers them
// 1..N in that order.
func NewRegistry(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("tournament: empty roster")
	}
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	reg := &Registry{players: make([]Player, len(sorted))}
	for i, e := range sorted {
		if e.Rating < 0 {
			return nil, fmt.Errorf("tournament: negative rating %d for %q",
				e.Rating, e.Name)
		}
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		reg.players[i] = Player{Num: i + 1, Name: name, Rating: e.Rating}
	}

	return reg, nil
}

func (r *Registry) Len() int {
	return len(r.players)
}

// Rounds returns the number of completed rounds.
func (r *Registry) Rounds() int {
	if len(r.players) == 0 {
		return 0
	}
	return len(r.players[0].Games)
}

func (r *Registry) has(num int) bool {
	return num >= 1 && num <= len(r.players)
}

// Player returns a copy of the player with the given number.
func (r *Registry) Player(num int) (Player, bool) {
	if !r.has(num) {
		return Player{}, false
	}
	return r.players[num-1].clone(), true
}

// Players returns a deep copy of the roster ordered by player number.
func (r *Registry) Players() []Player {
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = p.clone()
	}
	return out
}

// CheckPairings verifies that a round's pairings reference known players and
// that every player appears on exactly one board, a bye counting as a board.
func (r *Registry) CheckPairings(pairings []Pairing) error {
	seen := make(map[int]bool, 2*len(pairings))
	use := func(num int) error {
		if !r.has(num) {
			return fmt.Errorf("%w %d", ErrUnknownPlayer, num)
		}
		if seen[num] {
			return fmt.Errorf("player %d paired more than once", num)
		}
		seen[num] = true
		return nil
	}
	for _, p := range pairings {
		if err := use(p.White); err != nil {
			return err
		}
		if p.IsBye() {
			continue
		}
		if err := use(p.Black); err != nil {
			return err
		}
	}
	if len(seen) != len(r.players) {
		for num := 1; num <= len(r.players); num++ {
			if !seen[num] {
				return fmt.Errorf("%w: %d", ErrUnpairedPlayer, num)
			}
		}
	}

	return nil
}

func validScore(s float64) bool {
	return s == ScoreLoss || s == ScoreDraw || s == ScoreWin
}

// RecordGame applies a played game. whiteScore is 0, 0.5 or 1 and black
// receives the complement.
func (r *Registry) RecordGame(white, black int, whiteScore float64) error {
	if !r.has(white) {
		return fmt.Errorf("%w %d", ErrUnknownPlayer, white)
	}
	if !r.has(black) {
		return fmt.Errorf("%w %d", ErrUnknownPlayer, black)
	}
	if white == black {
		return fmt.Errorf("player %d cannot play itself", white)
	}
	if !validScore(whiteScore) {
		return fmt.Errorf("invalid score %v", whiteScore)
	}
	blackScore := ScoreWin - whiteScore

	w := &r.players[white-1]
	w.Score += whiteScore
	w.Games = append(w.Games, Game{Opponent: black, Color: White,
		Score: whiteScore})

	b := &r.players[black-1]
	b.Score += blackScore
	b.Games = append(b.Games, Game{Opponent: white, Color: Black,
		Score: blackScore})

	return nil
}

// RecordBye credits a full point to a player without an opponent.
func (r *Registry) RecordBye(num int) error {
	if !r.has(num) {
		return fmt.Errorf("%w %d", ErrUnknownPlayer, num)
	}
	p := &r.players[num-1]
	p.Score += ScoreBye
	p.Games = append(p.Games, Game{Color: NoColor, Score: ScoreBye})

	return nil
}

// Validate checks the roster invariants: dense numbering, one game per
// completed round, scores matching game history and consistent opponents.
func (r *Registry) Validate() error {
	rounds := r.Rounds()
	for i, p := range r.players {
		if p.Num != i+1 {
			return fmt.Errorf("player at index %d has number %d", i, p.Num)
		}
		if len(p.Games) != rounds {
			return fmt.Errorf("player %d has %d games; expected %d", p.Num,
				len(p.Games), rounds)
		}
		sum := 0.0
		for _, g := range p.Games {
			sum += g.Score
		}
		if sum != p.Score {
			return fmt.Errorf("player %d score %.1f does not match games %.1f",
				p.Num, p.Score, sum)
		}
	}

	for round := 0; round < rounds; round++ {
		for _, p := range r.players {
			g := p.Games[round]
			if g.IsBye() {
				if g.Score != ScoreBye || g.Color != NoColor {
					return fmt.Errorf("round %d: player %d has a malformed bye",
						round+1, p.Num)
				}
				continue
			}
			if !r.has(g.Opponent) {
				return fmt.Errorf("round %d: player %d has %w %d", round+1,
					p.Num, ErrUnknownPlayer, g.Opponent)
			}
			og := r.players[g.Opponent-1].Games[round]
			if og.Opponent != p.Num || og.Score != ScoreWin-g.Score ||
				og.Color == g.Color {
				return fmt.Errorf("round %d: players %d and %d disagree",
					round+1, p.Num, g.Opponent)
			}
		}
	}

	return nil
}
