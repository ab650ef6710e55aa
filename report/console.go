/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package report presents simulation progress and results: on the
// terminal, to a Discord channel, or both.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mikeb26/pairingsim/engine"
	"github.com/mikeb26/pairingsim/harness"
)

// StatsReporter receives the aggregate once every trial has finished.
type StatsReporter interface {
	TrialsFinished(ctx context.Context, st harness.Stats)
}

// Console writes plain text to out. It is safe for concurrent trials.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	// MultiTrial prefixes every line with its trial number.
	MultiTrial bool
	// Crosstable prints the final crosstable of each tournament.
	Crosstable bool
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, Crosstable: true}
}

func (c *Console) prefix(trial int) string {
	if !c.MultiTrial {
		return ""
	}
	return fmt.Sprintf("[trial %d] ", trial)
}

func (c *Console) RoundCompleted(ctx context.Context, trial int,
	rr harness.RoundReport) {

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%v%v\n", c.prefix(trial), roundLine(rr))
}

func roundLine(rr harness.RoundReport) string {
	line := fmt.Sprintf("Round %d: %d pairings (%v, %v)", rr.Round,
		len(rr.Pairings), rr.Algorithm, rr.Elapsed.Round(time.Millisecond))
	if rr.Compare == "" {
		return line
	}
	if !rr.Compared {
		return line + fmt.Sprintf("; %v comparison failed", rr.Compare)
	}
	return line + fmt.Sprintf("; similarity with %v: %.3f", rr.Compare,
		rr.Similarity)
}

func (c *Console) TournamentFinished(ctx context.Context, s *harness.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pre := c.prefix(s.Trial)
	if s.Halt != nil {
		fmt.Fprintf(c.out, "%vTournament halted after %d of %d rounds: %v\n",
			pre, s.RoundsPlayed(), s.RoundsPlanned, s.Halt)
		var failure *engine.Failure
		if errors.As(s.Halt, &failure) && failure.Stdout != "" {
			fmt.Fprintf(c.out, "%vEngine output: %v\n", pre,
				strings.TrimSpace(failure.Stdout))
		}
	} else {
		fmt.Fprintf(c.out, "%vTournament complete: %d rounds, %d players\n",
			pre, s.RoundsPlayed(), len(s.Players))
	}

	if c.Crosstable && len(s.Players) > 0 {
		fmt.Fprintf(c.out, "\n%v\n", Crosstable(s.Players))
	}
}

func (c *Console) TrialsFinished(ctx context.Context, st harness.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, StatsTable(st))
}

// StatsTable renders per round similarity across trials.
func StatsTable(st harness.Stats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d trials: %d completed, %d halted\n",
		st.Trials, st.Completed, st.Halted))
	if len(st.Rounds) == 0 {
		return sb.String()
	}

	headers := []string{"Round", "Played", "Compared", "Mean", "Min", "Max"}
	var rows [][]string
	for _, rs := range st.Rounds {
		row := []string{
			fmt.Sprintf("%d", rs.Round),
			fmt.Sprintf("%d", rs.Played),
			fmt.Sprintf("%d", rs.Compared),
		}
		if rs.Compared == 0 {
			row = append(row, "-", "-", "-")
		} else {
			row = append(row,
				fmt.Sprintf("%.3f", rs.MeanSimilarity),
				fmt.Sprintf("%.3f", rs.MinSimilarity),
				fmt.Sprintf("%.3f", rs.MaxSimilarity))
		}
		rows = append(rows, row)
	}
	sb.WriteString(formatTable(headers, rows))

	return sb.String()
}
