/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeb26/pairingsim/internal"
	"github.com/mikeb26/pairingsim/rating"
	"github.com/mikeb26/pairingsim/tournament"
)

const pairFourScript = "#!/bin/sh\nprintf '2\\n1 3\\n2 4\\n' > \"$4\"\n"

func clearEnv(t *testing.T) {
	t.Setenv(internal.EnvEngine, "")
	t.Setenv(internal.EnvArchiveBucket, "")
	t.Setenv(internal.EnvDiscordWebhook, "")
}

// fakeEngine writes script as the engine binary in a fresh directory.
func fakeEngine(t *testing.T, script string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine requires a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "bbpPairings")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return dir, bin
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config",
		filepath.Join(t.TempDir(), "none.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunSingleTournament(t *testing.T) {
	dir, _ := fakeEngine(t, pairFourScript)

	out, err := execute(t, "4", "3", "--workdir", dir, "--compare", "dutch",
		"--seed", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Round 1: 2 pairings (fast, ")
	assert.Contains(t, out, "similarity with dutch: 1.000")
	assert.Contains(t, out, "Tournament complete: 3 rounds, 4 players")
	assert.Contains(t, out, "No  Name")

	leftovers, err := filepath.Glob(filepath.Join(dir, "round*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRunKeepOutput(t *testing.T) {
	dir, bin := fakeEngine(t, pairFourScript)
	work := t.TempDir()

	_, err := execute(t, "4", "2", "--engine", bin, "--workdir", work, "-k",
		"-a", "burstein")
	require.NoError(t, err)

	for _, name := range []string{"round1.burstein.trfx", "round2.burstein.txt"} {
		_, err := os.Stat(filepath.Join(work, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dir, "round1.burstein.trfx"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunTrials(t *testing.T) {
	dir, bin := fakeEngine(t, pairFourScript)

	out, err := execute(t, "4", "2", "--engine", bin, "--workdir", dir,
		"--trials", "3", "--parallel", "2", "-c", "dutch", "--model", "elo")
	require.NoError(t, err)

	assert.Contains(t, out, "[trial 1] Round 1:")
	assert.Contains(t, out, "[trial 3] Tournament complete")
	assert.Contains(t, out, "3 trials: 3 completed, 0 halted")
	for _, sub := range []string{"trial1", "trial2", "trial3"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestRunEngineFailureHalts(t *testing.T) {
	dir, _ := fakeEngine(t,
		"#!/bin/sh\necho 'No valid pairing exists'\nexit 1\n")

	out, err := execute(t, "4", "2", "--workdir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Tournament halted after 0 of 2 rounds")
	assert.Contains(t, out, "Engine output: No valid pairing exists")
}

func TestRunSaveConfig(t *testing.T) {
	dir, bin := fakeEngine(t, pairFourScript)
	path := filepath.Join(t.TempDir(), "saved", "pairingsim.yaml")

	_, err := execute(t, "4", "1", "--engine", bin, "--workdir", dir,
		"-c", "dutch", "--model", "elo", "--draw-share", "0.2",
		"--seed", "11", "--engine-timeout", "90s", "--save-config", path)
	require.NoError(t, err)

	saved, err := internal.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, bin, saved.Engine.Path)
	assert.Equal(t, dir, saved.Engine.WorkDir)
	assert.Equal(t, "fast", saved.Engine.Algorithm)
	assert.Equal(t, "dutch", saved.Engine.Compare)
	assert.Equal(t, "1m30s", saved.Engine.Timeout)
	assert.Equal(t, "elo", saved.Simulation.Model)
	assert.Equal(t, 0.2, saved.Simulation.DrawShare)
	assert.Equal(t, uint64(11), saved.Simulation.Seed)
	assert.Equal(t, 1, saved.Simulation.Trials)
	assert.Equal(t, internal.DefaultMaxRating, saved.Roster.MaxRating)

	// the saved file alone reproduces the settings
	opts := &options{}
	cmd := newCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))
	require.NoError(t, applyConfig(cmd, opts, saved))
	assert.Equal(t, "dutch", opts.compare)
	assert.Equal(t, bin, opts.enginePath)
	assert.Equal(t, uint64(11), opts.seed)
}

func TestRunBadArguments(t *testing.T) {
	dir, _ := fakeEngine(t, pairFourScript)

	tests := []struct {
		name string
		args []string
	}{
		{"rounds", []string{"4", "0"}},
		{"players", []string{"-2", "3"}},
		{"no players", []string{"0", "3"}},
		{"algorithm", []string{"4", "3", "-a", "monrad"}},
		{"compare", []string{"4", "3", "-c", "lim"}},
		{"first color", []string{"4", "3", "--first-color", "red1"}},
		{"model", []string{"4", "3", "--model", "coinflip"}},
		{"trials", []string{"4", "3", "--trials", "0"}},
		{"roster sources", []string{"4", "3", "--roster-url",
			"http://localhost/x", "--roster-event", "1"}},
		{"event id", []string{"0", "3", "--roster-event", "abc"}},
		{"arg count", []string{"4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, append(tc.args, "--workdir", dir)...)
			assert.Error(t, err)
		})
	}
}

func TestApplyConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pairingsim.yaml")
	data := `
engine:
  algorithm: dutch
  compare: burstein
  timeout: 30s
  keep_output: true
simulation:
  trials: 4
  seed: 99
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	cfg, err := internal.LoadConfig(path)
	require.NoError(t, err)

	opts := &options{}
	cmd := newCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{"-c", "fast", "--trials", "2"}))
	require.NoError(t, applyConfig(cmd, opts, cfg))

	assert.Equal(t, "dutch", opts.algorithm)
	assert.Equal(t, "fast", opts.compare, "flag wins over file")
	assert.Equal(t, 2, opts.trials, "flag wins over file")
	assert.Equal(t, uint64(99), opts.seed)
	assert.True(t, opts.keepOutput)
	assert.Equal(t, "30s", opts.engineTimeout.String())
	assert.Equal(t, 7, opts.pointsForWin)
}

func TestNewModel(t *testing.T) {
	m, err := newModel("table", 0)
	require.NoError(t, err)
	assert.IsType(t, &rating.Table{}, m)

	m, err = newModel("elo", 0.25)
	require.NoError(t, err)
	assert.Equal(t, rating.Elo{DrawShare: 0.25}, m)

	_, err = newModel("elo", 2)
	assert.Error(t, err)
}

func TestLimitRoster(t *testing.T) {
	entries := []tournament.Entry{
		{Name: "C", Rating: 1500},
		{Name: "A", Rating: 2100},
		{Name: "B", Rating: 1800},
	}
	assert.Equal(t, entries, limitRoster(entries, 0))
	assert.Equal(t, entries, limitRoster(entries, 5))
	assert.Equal(t, []tournament.Entry{{Name: "A", Rating: 2100},
		{Name: "B", Rating: 1800}}, limitRoster(entries, 2))
}
