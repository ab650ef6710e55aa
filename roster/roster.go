/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package roster builds the entry list a simulated tournament starts from:
// generated at random, scraped from a registration page, or taken from a
// rated US Chess event.
package roster

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/mikeb26/pairingsim/tournament"
)

var ErrTooFewPlayers = errors.New("roster needs at least two rated players")

// Random returns n unnamed entries with ratings uniform in [lo, hi]. The
// same seed always yields the same roster.
func Random(n int, lo int, hi int, seed uint64) ([]tournament.Entry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("roster.random: player count must be positive; got %d",
			n)
	}
	if lo < 0 || lo > hi {
		return nil, fmt.Errorf("roster.random: empty rating range [%d, %d]",
			lo, hi)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	entries := make([]tournament.Entry, n)
	for i := range entries {
		entries[i].Rating = lo + rng.IntN(hi-lo+1)
	}

	return entries, nil
}

// RandomSeed picks a seed for Random when the caller has none.
func RandomSeed() uint64 {
	return rand.Uint64()
}

func requireRated(entries []tournament.Entry) ([]tournament.Entry, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("found %d: %w", len(entries), ErrTooFewPlayers)
	}
	return entries, nil
}
