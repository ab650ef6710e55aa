/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package engine runs the external pairing engine. Each call writes the
// current tournament state to a request file, runs the engine on it and
// reads the pairings back from a response file.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mikeb26/pairingsim/tournament"
	"github.com/mikeb26/pairingsim/trf"
)

const (
	WindowsBinaryName = "bbpPairings.exe"
	BinaryName        = "bbpPairings"

	// how long to wait for the engine's output pipes after it is killed
	waitDelay = 2 * time.Second
)

// Pairer produces the pairings for one round from the players' state
// before that round.
type Pairer interface {
	Pair(ctx context.Context, round int, alg Algorithm,
		players []tournament.Player) ([]tournament.Pairing, error)
}

// Archiver receives a copy of every exchange file before it is removed.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte) error
}

// FindBinary returns the engine path inside dir. A Windows build is
// preferred when present.
func FindBinary(dir string) string {
	if dir == "" {
		dir = "."
	}
	winPath := filepath.Join(dir, WindowsBinaryName)
	if _, err := os.Stat(winPath); err == nil {
		return explicitPath(winPath)
	}
	return explicitPath(filepath.Join(dir, BinaryName))
}

// exec searches PATH for bare names, which filepath.Join produces for "."
func explicitPath(path string) string {
	if filepath.Base(path) == path {
		return "." + string(filepath.Separator) + path
	}
	return path
}

// Invoker runs one engine process per Pair call.
type Invoker struct {
	// Binary is the engine executable.
	Binary string
	// Dir holds the request and response files.
	Dir    string
	Header trf.Header
	// KeepFiles leaves the exchange files in Dir for inspection.
	KeepFiles bool
	// Timeout bounds each engine run; zero means no limit.
	Timeout  time.Duration
	Archiver Archiver
	Logger   *zap.Logger
}

func (inv *Invoker) logger() *zap.Logger {
	if inv.Logger == nil {
		return zap.NewNop()
	}
	return inv.Logger
}

func RequestName(round int, alg Algorithm) string {
	return fmt.Sprintf("round%d.%v.trfx", round, alg)
}

func ResponseName(round int, alg Algorithm) string {
	return fmt.Sprintf("round%d.%v.txt", round, alg)
}

func (inv *Invoker) path(name string) string {
	dir := inv.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

// Pair implements Pairer.
func (inv *Invoker) Pair(ctx context.Context, round int, alg Algorithm,
	players []tournament.Player) ([]tournament.Pairing, error) {

	reqPath := inv.path(RequestName(round, alg))
	respPath := inv.path(ResponseName(round, alg))
	defer inv.cleanup(ctx, reqPath, respPath)

	if err := inv.writeRequest(reqPath, players); err != nil {
		return nil, fmt.Errorf("engine.pair: round %d %v: %w", round, alg, err)
	}

	if err := inv.run(ctx, round, alg, reqPath, respPath); err != nil {
		return nil, err
	}

	f, err := os.Open(respPath)
	if err != nil {
		return nil, fmt.Errorf("engine.pair: round %d %v: reading response: %w",
			round, alg, err)
	}
	defer f.Close()

	pairings, err := trf.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("engine.pair: round %d %v: %w", round, alg, err)
	}

	return pairings, nil
}

func (inv *Invoker) writeRequest(path string, players []tournament.Player) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if err := trf.Encode(f, inv.Header, players); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing request: %w", err)
	}

	return nil
}

func (inv *Invoker) run(ctx context.Context, round int, alg Algorithm,
	reqPath string, respPath string) error {

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Binary, alg.Flag(), reqPath, "-p",
		respPath)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	inv.logger().Debug("engine.run: starting engine",
		zap.Int("round", round),
		zap.Stringer("algorithm", alg),
		zap.Strings("argv", cmd.Args))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		failure := &Failure{
			Round:     round,
			Algorithm: alg,
			ExitCode:  -1,
			Stdout:    stdout.String(),
			Stderr:    stderr.String(),
			Err:       err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			failure.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			failure.Err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		inv.logger().Error("engine.run: engine failed",
			zap.Int("round", round),
			zap.Stringer("algorithm", alg),
			zap.Int("exitCode", failure.ExitCode),
			zap.String("reason", failure.Reason()),
			zap.String("stdout", failure.Stdout),
			zap.String("stderr", failure.Stderr),
			zap.Duration("elapsed", elapsed))
		return failure
	}

	inv.logger().Info("engine.run: paired round",
		zap.Int("round", round),
		zap.Stringer("algorithm", alg),
		zap.Duration("elapsed", elapsed))

	return nil
}

func (inv *Invoker) cleanup(ctx context.Context, paths ...string) {
	if inv.Archiver != nil {
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				// the engine may not have produced a response
				continue
			}
			if err := inv.Archiver.Archive(ctx, filepath.Base(p), data); err != nil {
				inv.logger().Warn("engine.cleanup: archive failed",
					zap.String("file", p), zap.Error(err))
			}
		}
	}
	if inv.KeepFiles {
		return
	}
	for _, p := range paths {
		err := os.Remove(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			inv.logger().Warn("engine.cleanup: unable to remove scratch file",
				zap.String("file", p), zap.Error(err))
		}
	}
}
