/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/engine"
	"github.com/mikeb26/pairingsim/harness"
	"github.com/mikeb26/pairingsim/internal"
	ihttpcache "github.com/mikeb26/pairingsim/internal/httpcache"
	"github.com/mikeb26/pairingsim/rating"
	"github.com/mikeb26/pairingsim/report"
	"github.com/mikeb26/pairingsim/roster"
	"github.com/mikeb26/pairingsim/s3store"
	"github.com/mikeb26/pairingsim/simulate"
	"github.com/mikeb26/pairingsim/tournament"
	"github.com/mikeb26/pairingsim/trf"
	"github.com/mikeb26/pairingsim/uschess"
)

func run(cmd *cobra.Command, args []string, opts *options,
	logger *zap.Logger) error {

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := internal.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyConfig(cmd, opts, cfg); err != nil {
		return err
	}
	if opts.saveConfig != "" {
		if err := effectiveConfig(opts, cfg).Save(opts.saveConfig); err != nil {
			return err
		}
		logger.Info("pairingsim.run: saved effective config",
			zap.String("path", opts.saveConfig))
	}

	players, err := strconv.Atoi(args[0])
	if err != nil || players < 0 {
		return fmt.Errorf("invalid player count %q", args[0])
	}
	rounds, err := strconv.Atoi(args[1])
	if err != nil || rounds <= 0 {
		return fmt.Errorf("invalid round count %q", args[1])
	}

	sim, err := newSimulation(opts, rounds, logger)
	if err != nil {
		return err
	}
	entries, err := loadRoster(ctx, opts, cfg, players, logger)
	if err != nil {
		return err
	}
	sim.entries = entries

	if opts.archiveBucket != "" {
		store := s3store.New(ctx, opts.archiveBucket, cfg.Archive.Prefix,
			opts.archiveGzip, logger)
		if err := store.Init(); err != nil {
			return err
		}
		store.RunID = sim.runID
		sim.archive = store
	}

	console := report.NewConsole(cmd.OutOrStdout())
	console.MultiTrial = opts.trials > 1
	reporters := report.Multi{console}
	if opts.discordWebhook != "" {
		d, err := report.NewDiscord(opts.discordWebhook, logger)
		if err != nil {
			return err
		}
		d.Title = "pairingsim run " + sim.runID
		d.MultiTrial = opts.trials > 1
		reporters = append(reporters, d)
	}
	sim.reporter = reporters

	logger.Info("pairingsim.run: starting",
		zap.String("runID", sim.runID),
		zap.Int("players", len(entries)),
		zap.Int("rounds", rounds),
		zap.Stringer("algorithm", sim.config.Algorithm),
		zap.String("compare", string(sim.config.Compare)),
		zap.Int("trials", opts.trials))

	results, err := harness.RunTrials(ctx, opts.trials, opts.parallel,
		sim.runTrial)
	if err != nil {
		return err
	}
	if opts.trials > 1 {
		reporters.TrialsFinished(ctx, harness.Aggregate(results))
	}

	return nil
}

// applyConfig fills every flag the user did not set from cfg.
func applyConfig(cmd *cobra.Command, opts *options,
	cfg *internal.Config) error {

	changed := cmd.Flags().Changed
	str := func(flag string, dst *string, v string) {
		if !changed(flag) && v != "" {
			*dst = v
		}
	}
	str("algorithm", &opts.algorithm, cfg.Engine.Algorithm)
	str("compare", &opts.compare, cfg.Engine.Compare)
	str("engine", &opts.enginePath, cfg.Engine.Path)
	str("workdir", &opts.workDir, cfg.Engine.WorkDir)
	str("first-color", &opts.firstColor, cfg.Engine.FirstColor)
	str("model", &opts.model, cfg.Simulation.Model)
	str("roster-url", &opts.rosterURL, cfg.Roster.URL)
	str("roster-event", &opts.rosterEvent, cfg.Roster.Event)
	str("roster-section", &opts.rosterSection, cfg.Roster.Section)
	str("archive-bucket", &opts.archiveBucket, cfg.Archive.Bucket)
	str("discord-webhook", &opts.discordWebhook, cfg.Report.DiscordWebhook)

	if !changed("keep-output") {
		opts.keepOutput = cfg.Engine.KeepOutput
	}
	if !changed("archive-gzip") {
		opts.archiveGzip = cfg.Archive.Gzip
	}
	if !changed("points-for-win") && cfg.Engine.PointsForWin > 0 {
		opts.pointsForWin = cfg.Engine.PointsForWin
	}
	if !changed("draw-share") {
		opts.drawShare = cfg.Simulation.DrawShare
	}
	if !changed("seed") && cfg.Simulation.Seed != 0 {
		opts.seed = cfg.Simulation.Seed
	}
	if !changed("trials") && cfg.Simulation.Trials > 0 {
		opts.trials = cfg.Simulation.Trials
	}
	if !changed("parallel") && cfg.Simulation.Parallel > 0 {
		opts.parallel = cfg.Simulation.Parallel
	}
	if !changed("engine-timeout") {
		timeout, err := cfg.EngineTimeout()
		if err != nil {
			return err
		}
		if timeout > 0 {
			opts.engineTimeout = timeout
		}
	}

	if opts.trials <= 0 {
		return fmt.Errorf("trials must be positive; got %d", opts.trials)
	}
	if opts.engineTimeout < 0 {
		return fmt.Errorf("negative engine timeout %v", opts.engineTimeout)
	}
	if opts.rosterURL != "" && opts.rosterEvent != "" {
		return fmt.Errorf("--roster-url and --roster-event are exclusive")
	}
	return nil
}

// effectiveConfig returns cfg with the merged flag values written back, so
// a saved copy reproduces this run's settings.
func effectiveConfig(opts *options, cfg *internal.Config) *internal.Config {
	eff := *cfg
	eff.Engine.Path = opts.enginePath
	eff.Engine.WorkDir = opts.workDir
	eff.Engine.Algorithm = opts.algorithm
	eff.Engine.Compare = opts.compare
	eff.Engine.KeepOutput = opts.keepOutput
	eff.Engine.Timeout = ""
	if opts.engineTimeout > 0 {
		eff.Engine.Timeout = opts.engineTimeout.String()
	}
	eff.Engine.PointsForWin = opts.pointsForWin
	eff.Engine.FirstColor = opts.firstColor

	eff.Simulation.Model = opts.model
	eff.Simulation.DrawShare = opts.drawShare
	eff.Simulation.Trials = opts.trials
	eff.Simulation.Parallel = opts.parallel
	eff.Simulation.Seed = opts.seed

	eff.Roster.URL = opts.rosterURL
	eff.Roster.Event = opts.rosterEvent
	eff.Roster.Section = opts.rosterSection

	eff.Archive.Bucket = opts.archiveBucket
	eff.Archive.Gzip = opts.archiveGzip
	eff.Report.DiscordWebhook = opts.discordWebhook
	return &eff
}

// simulation holds what every trial shares.
type simulation struct {
	runID   string
	config  harness.Config
	header  trf.Header
	binary  string
	workDir string
	keep    bool
	opts    *options
	model   rating.Model
	entries []tournament.Entry

	archive  engine.Archiver
	reporter harness.Reporter
	logger   *zap.Logger
}

func newSimulation(opts *options, rounds int,
	logger *zap.Logger) (*simulation, error) {

	alg, err := engine.ParseAlgorithm(opts.algorithm)
	if err != nil {
		return nil, err
	}
	var compare engine.Algorithm
	if opts.compare != "" {
		compare, err = engine.ParseAlgorithm(opts.compare)
		if err != nil {
			return nil, err
		}
	}
	firstColor, err := trf.ParseFirstColor(opts.firstColor)
	if err != nil {
		return nil, err
	}
	model, err := newModel(opts.model, opts.drawShare)
	if err != nil {
		return nil, err
	}

	binary := opts.enginePath
	if binary == "" {
		binary = engine.FindBinary(opts.workDir)
	}

	return &simulation{
		runID:  uuid.NewString(),
		config: harness.Config{Rounds: rounds, Algorithm: alg, Compare: compare},
		header: trf.Header{
			PointsForWin: opts.pointsForWin,
			TotalRounds:  rounds,
			FirstColor:   firstColor,
		},
		binary:  binary,
		workDir: opts.workDir,
		keep:    opts.keepOutput,
		opts:    opts,
		model:   model,
		logger:  logger,
	}, nil
}

func newModel(name string, drawShare float64) (rating.Model, error) {
	switch name {
	case "", "table":
		return rating.NewTable(), nil
	case "elo":
		if drawShare < 0 || drawShare > 1 {
			return nil, fmt.Errorf("draw share %v outside [0, 1]", drawShare)
		}
		return rating.Elo{DrawShare: drawShare}, nil
	}
	return nil, fmt.Errorf("unknown result model %q (want table or elo)", name)
}

// runTrial plays one tournament. Trials of a multi-trial run get their own
// subdirectory so exchange files never collide.
func (sim *simulation) runTrial(ctx context.Context,
	trial int) (*harness.Summary, error) {

	dir := sim.workDir
	var archive engine.Archiver = sim.archive
	if sim.opts.trials > 1 {
		dir = filepath.Join(sim.workDir, fmt.Sprintf("trial%d", trial))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		if archive != nil {
			archive = trialArchiver{trial: trial, up: archive}
		}
	}

	reg, err := tournament.NewRegistry(sim.entries)
	if err != nil {
		return nil, err
	}
	logger := sim.logger.With(zap.Int("trial", trial))

	o := &harness.Orchestrator{
		Config:   sim.config,
		Trial:    trial,
		Registry: reg,
		Pairer: &engine.Invoker{
			Binary:    sim.binary,
			Dir:       dir,
			Header:    sim.header,
			KeepFiles: sim.keep,
			Timeout:   sim.opts.engineTimeout,
			Archiver:  archive,
			Logger:    logger,
		},
		Simulator: &simulate.Simulator{
			Model:  sim.model,
			Source: simulate.CryptoSource{},
			Logger: logger,
		},
		Reporter: sim.reporter,
		Logger:   logger,
	}

	return o.Run(ctx)
}

type trialArchiver struct {
	trial int
	up    engine.Archiver
}

func (a trialArchiver) Archive(ctx context.Context, name string,
	data []byte) error {
	return a.up.Archive(ctx, fmt.Sprintf("trial%d/%v", a.trial, name), data)
}

func loadRoster(ctx context.Context, opts *options, cfg *internal.Config,
	players int, logger *zap.Logger) ([]tournament.Entry, error) {

	var entries []tournament.Entry
	var err error
	switch {
	case opts.rosterURL != "":
		hc, herr := rosterHTTPClient(ctx, cfg, logger)
		if herr != nil {
			return nil, herr
		}
		entries, err = roster.FromRegistrationPage(ctx, hc, opts.rosterURL,
			opts.rosterSection)
	case opts.rosterEvent != "":
		id, perr := strconv.ParseInt(opts.rosterEvent, 10, 64)
		if perr != nil {
			return nil, fmt.Errorf("invalid event id %q", opts.rosterEvent)
		}
		section := 0
		if opts.rosterSection != "" {
			section, err = strconv.Atoi(opts.rosterSection)
			if err != nil {
				return nil, fmt.Errorf("event sections are numbered; got %q",
					opts.rosterSection)
			}
		}
		client := uschess.NewClient(rosterCache(ctx, cfg, logger))
		entries, err = roster.FromRatedEvent(ctx, client,
			uschess.EventID(id), section, logger)
	default:
		if players == 0 {
			return nil, fmt.Errorf("player count must be positive")
		}
		seed := opts.seed
		if seed == 0 {
			seed = roster.RandomSeed()
		}
		logger.Info("pairingsim.roster: generated", zap.Uint64("seed", seed))
		return roster.Random(players, cfg.Roster.MinRating,
			cfg.Roster.MaxRating, seed)
	}
	if err != nil {
		return nil, err
	}

	return limitRoster(entries, players), nil
}

// limitRoster keeps the n highest rated entries; 0 keeps all.
func limitRoster(entries []tournament.Entry, n int) []tournament.Entry {
	if n == 0 || n >= len(entries) {
		return entries
	}
	reg, err := tournament.NewRegistry(entries)
	if err != nil {
		return entries
	}
	ret := make([]tournament.Entry, 0, n)
	for _, p := range reg.Players()[:n] {
		ret = append(ret, tournament.Entry{Name: p.Name, Rating: p.Rating})
	}
	return ret
}

func rosterHTTPClient(ctx context.Context, cfg *internal.Config,
	logger *zap.Logger) (*http.Client, error) {

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	return ihttpcache.NewCachedHttpClient(ttl, rosterCache(ctx, cfg, logger)), nil
}

// rosterCache is S3 backed when a cache bucket is configured and reachable;
// nil otherwise, which callers treat as an in-memory cache.
func rosterCache(ctx context.Context, cfg *internal.Config,
	logger *zap.Logger) httpcache.Cache {

	if cfg.Roster.CacheBucket == "" {
		return nil
	}
	store := s3store.New(ctx, cfg.Roster.CacheBucket, cfg.Archive.Prefix,
		false, logger)
	if err := store.Init(); err != nil {
		logger.Warn("pairingsim.roster: S3 cache unavailable; using memory",
			zap.String("bucket", cfg.Roster.CacheBucket),
			zap.Error(err))
		return nil
	}
	return store
}
