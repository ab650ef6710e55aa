/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package trf reads and writes the exchange files passed to and from the
// pairing engine. Requests are TRF(x) tournament reports; responses are the
// engine's plain pairing lists.
//
// Column positions in 001 records are part of the engine's contract:
//
//	cols  1-3   "001"
//	cols  5-8   pairing number
//	cols 15-47  name
//	cols 49-52  rating
//	cols 81-84  points
//	cols 86-89  rank
//	cols 92-    one 10 column block per round: opponent (4), color, result
package trf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mikeb26/pairingsim/tournament"
)

const (
	// DefaultPointsForWin is the XXW value written when none is configured.
	DefaultPointsForWin = 7

	ByeOpponent = "0000"

	maxPlayerNum = 9999
	maxRating    = 9999
	maxPoints    = 99.9
	nameWidth    = 33
)

var ErrMalformedResponse = errors.New("malformed response")

// FirstColor is the color given to the top seed in round 1.
type FirstColor string

const (
	FirstColorWhite FirstColor = "white1"
	FirstColorBlack FirstColor = "black1"
)

func ParseFirstColor(s string) (FirstColor, error) {
	switch FirstColor(strings.ToLower(strings.TrimSpace(s))) {
	case FirstColorWhite:
		return FirstColorWhite, nil
	case FirstColorBlack, "":
		return FirstColorBlack, nil
	}
	return "", fmt.Errorf("unknown first color %q (want white1 or black1)", s)
}

// Header carries the tournament level XX lines.
type Header struct {
	PointsForWin int
	TotalRounds  int
	FirstColor   FirstColor
}

func (h Header) withDefaults() Header {
	if h.PointsForWin == 0 {
		h.PointsForWin = DefaultPointsForWin
	}
	if h.FirstColor == "" {
		h.FirstColor = FirstColorBlack
	}
	return h
}

// ResultCode returns the single character result code for a game. A blank
// means nothing is known about the game yet.
func ResultCode(g tournament.Game) byte {
	if g.IsBye() {
		return 'U'
	}
	switch g.Score {
	case tournament.ScoreWin:
		return '1'
	case tournament.ScoreLoss:
		return '0'
	case tournament.ScoreDraw:
		return '='
	}
	return ' '
}

func gameBlock(g tournament.Game) string {
	opp := ByeOpponent
	if !g.IsBye() {
		opp = strconv.Itoa(g.Opponent)
	}
	color := g.Color.Code()
	result := ResultCode(g)
	if result == ' ' {
		color = '-'
	}

	return fmt.Sprintf("  %4s %c %c", opp, color, result)
}

// fitName makes a name safe for the fixed name column. Columns count
// characters, so the cut is by rune; the engine rejects invalid UTF-8 and a
// control character would break the record.
func fitName(name string) string {
	name = strings.ToValidUTF8(name, "?")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
	runes := []rune(name)
	if len(runes) > nameWidth {
		runes = runes[:nameWidth]
	}
	return strings.TrimRight(string(runes), " ")
}

// PlayerLine renders the 001 record for one player.
func PlayerLine(p tournament.Player) (string, error) {
	if p.Num < 1 || p.Num > maxPlayerNum {
		return "", fmt.Errorf("player number %d out of range 1-%d", p.Num,
			maxPlayerNum)
	}
	if p.Rating < 0 || p.Rating > maxRating {
		return "", fmt.Errorf("player %d rating %d out of range 0-%d", p.Num,
			p.Rating, maxRating)
	}
	if p.Score < 0 || p.Score > maxPoints {
		return "", fmt.Errorf("player %d score %.1f out of range", p.Num,
			p.Score)
	}
	name := fitName(p.Name)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("001 %4d %4s %-*s %4d %3s %11s %10s %4.1f%5s",
		p.Num, "", nameWidth, name, p.Rating, "", "", "", p.Score, ""))
	for _, g := range p.Games {
		sb.WriteString(gameBlock(g))
	}

	return sb.String(), nil
}

// Encode writes the tournament state for pairing the next round. players
// must be ordered by player number.
func Encode(w io.Writer, hdr Header, players []tournament.Player) error {
	hdr = hdr.withDefaults()
	if hdr.TotalRounds <= 0 {
		return fmt.Errorf("trf.encode: total rounds must be positive; got %d",
			hdr.TotalRounds)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "XXW %d\n", hdr.PointsForWin)
	fmt.Fprintf(bw, "XXR %d\n", hdr.TotalRounds)
	fmt.Fprintf(bw, "XXC %s\n", hdr.FirstColor)
	for i, p := range players {
		if p.Num != i+1 {
			return fmt.Errorf("trf.encode: player at position %d has number %d",
				i+1, p.Num)
		}
		line, err := PlayerLine(p)
		if err != nil {
			return fmt.Errorf("trf.encode: %w", err)
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// Decode reads an engine response: a pairing count followed by that many
// "white black" lines, where black 0 denotes a bye.
func Decode(r io.Reader) ([]tournament.Pairing, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trf.decode: %w", err)
	}
	if len(lines) == 0 {
		return nil, malformed("missing pairing count")
	}

	count, err := strconv.Atoi(lines[0])
	if err != nil || count < 0 {
		return nil, malformed("invalid pairing count %q", lines[0])
	}
	rows := lines[1:]
	if len(rows) != count {
		return nil, malformed("declared %d pairings but found %d", count,
			len(rows))
	}

	pairings := make([]tournament.Pairing, 0, count)
	for i, row := range rows {
		fields := strings.Fields(row)
		if len(fields) != 2 {
			return nil, malformed("line %d: %q is not two integers", i+2, row)
		}
		white, errW := strconv.Atoi(fields[0])
		black, errB := strconv.Atoi(fields[1])
		if errW != nil || errB != nil || white <= 0 || black < 0 {
			return nil, malformed("line %d: %q is not a valid pairing", i+2,
				row)
		}
		pairings = append(pairings, tournament.Pairing{White: white,
			Black: black})
	}

	return pairings, nil
}
