/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// pairingsim plays simulated Swiss tournaments through an external pairing
// engine, drawing game results from the players' rating differences, and
// optionally measures how closely a second algorithm agrees with the first.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/engine"
	"github.com/mikeb26/pairingsim/internal"
)

type options struct {
	configPath string
	saveConfig string
	verbose    bool

	algorithm     string
	compare       string
	keepOutput    bool
	enginePath    string
	workDir       string
	engineTimeout time.Duration
	pointsForWin  int
	firstColor    string

	seed      uint64
	trials    int
	parallel  int
	model     string
	drawShare float64

	rosterURL     string
	rosterEvent   string
	rosterSection string

	archiveBucket  string
	archiveGzip    bool
	discordWebhook string
}

func newRootCmd() *cobra.Command {
	return newCommand(&options{})
}

// newCommand binds the command's flags to opts.
func newCommand(opts *options) *cobra.Command {
	var logger *zap.Logger

	cmd := &cobra.Command{
		Use:   "pairingsim <players> <rounds>",
		Short: "Simulate Swiss tournaments against a pairing engine",
		Long: `pairingsim runs a Swiss tournament of <rounds> rounds. Every round the
pairing engine pairs the current standings, then each game's result is
drawn at random from the two players' rating difference.

With --compare a second algorithm pairs the same standings each round
and the share of identical pairings is reported.

With --roster-url or --roster-event the entries come from a registration
page or a rated event; <players> then keeps only the top N (0 keeps all).`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = internal.NewLogger(opts.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", internal.DefaultConfigFile,
		"YAML config file; missing is fine")
	f.StringVar(&opts.saveConfig, "save-config", "",
		"write the effective settings of this run to a YAML file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	f.StringVarP(&opts.algorithm, "algorithm", "a",
		engine.DefaultAlgorithm.String(),
		fmt.Sprintf("pairing algorithm %v", engine.Algorithms))
	f.StringVarP(&opts.compare, "compare", "c", "",
		"second algorithm to compare against every round")
	f.BoolVarP(&opts.keepOutput, "keep-output", "k", false,
		"keep the exchange files after each round")
	f.StringVar(&opts.enginePath, "engine", "",
		"pairing engine binary (default: bbpPairings[.exe] in --workdir)")
	f.StringVar(&opts.workDir, "workdir", ".",
		"directory for the exchange files")
	f.DurationVar(&opts.engineTimeout, "engine-timeout", 0,
		"limit on a single engine run (0 waits forever)")
	f.IntVar(&opts.pointsForWin, "points-for-win", 7,
		"XXW value written to every request")
	f.StringVar(&opts.firstColor, "first-color", "black1",
		"color of the top seed in round 1 (white1 or black1)")

	f.Uint64Var(&opts.seed, "seed", 0, "roster seed (0 picks one)")
	f.IntVar(&opts.trials, "trials", 1, "number of independent tournaments")
	f.IntVar(&opts.parallel, "parallel", 1, "tournaments run at once")
	f.StringVar(&opts.model, "model", "table", "result model: table or elo")
	f.Float64Var(&opts.drawShare, "draw-share", 0.3,
		"draw share of the elo model")

	f.StringVar(&opts.rosterURL, "roster-url", "",
		"registration page with a members table")
	f.StringVar(&opts.rosterEvent, "roster-event", "",
		"US Chess rated event id")
	f.StringVar(&opts.rosterSection, "roster-section", "",
		"section name (page) or number (event)")

	f.StringVar(&opts.archiveBucket, "archive-bucket", "",
		"S3 bucket receiving every exchange file")
	f.BoolVar(&opts.archiveGzip, "archive-gzip", false,
		"gzip archived files")
	f.StringVar(&opts.discordWebhook, "discord-webhook", "",
		"Discord webhook url for the results")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pairingsim: %v\n", err)
		os.Exit(1)
	}
}
