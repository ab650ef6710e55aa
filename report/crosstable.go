/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mikeb26/pairingsim/internal"
	"github.com/mikeb26/pairingsim/tournament"
)

// Crosstable renders players ordered by score, best first. Ties keep
// pairing number order. Cells read W3(w) for a win with white against
// player 3, L2(b), D5(w), and BYE(1) for a pairing-allocated bye.
func Crosstable(players []tournament.Player) string {
	ordered := make([]tournament.Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	numRounds := 0
	for _, p := range ordered {
		numRounds = max(numRounds, len(p.Games))
	}

	headers := []string{"No", "Name", "Rating", "Pts"}
	for i := 1; i <= numRounds; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i))
	}

	var rows [][]string
	for _, p := range ordered {
		row := []string{
			fmt.Sprintf("%d.", p.Num),
			p.Name,
			fmt.Sprintf("%d", p.Rating),
			internal.ScoreToString(p.Score),
		}
		for _, g := range p.Games {
			row = append(row, gameCell(g))
		}
		for len(row) < len(headers) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	return formatTable(headers, rows)
}

func gameCell(g tournament.Game) string {
	if g.IsBye() {
		return fmt.Sprintf("BYE(%v)", internal.ScoreToString(g.Score))
	}

	var res byte
	switch g.Score {
	case tournament.ScoreWin:
		res = 'W'
	case tournament.ScoreLoss:
		res = 'L'
	case tournament.ScoreDraw:
		res = 'D'
	default:
		return "?"
	}
	return fmt.Sprintf("%c%d(%c)", res, g.Opponent, g.Color.Code())
}

// formatTable left aligns every column to its widest cell.
func formatTable(headers []string, rows [][]string) string {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	var fmtStrBuilder strings.Builder
	for _, w := range colWidths {
		fmtStrBuilder.WriteString(fmt.Sprintf("%%-%ds  ", w))
	}
	fmtStr := strings.TrimRight(fmtStrBuilder.String(), " ") + "\n"

	var sb strings.Builder
	sb.WriteString(trimLine(fmt.Sprintf(fmtStr, toAnySlice(headers)...)))
	for _, row := range rows {
		sb.WriteString(trimLine(fmt.Sprintf(fmtStr, toAnySlice(row)...)))
	}

	return sb.String()
}

func trimLine(line string) string {
	return strings.TrimRight(line, " \n") + "\n"
}

// toAnySlice converts a slice of any type to a slice of any (interface{}).
func toAnySlice[T any](slice []T) []any {
	result := make([]any, len(slice))
	for i, v := range slice {
		result[i] = v
	}
	return result
}
