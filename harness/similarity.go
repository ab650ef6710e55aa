/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package harness

import "github.com/mikeb26/pairingsim/tournament"

// Similarity is the share of primary's boards that other also produced,
// colors included. Two empty lists are identical.
func Similarity(primary, other []tournament.Pairing) float64 {
	a := pairingSet(primary)
	b := pairingSet(other)
	if len(a) == 0 {
		if len(b) == 0 {
			return 1
		}
		return 0
	}

	common := 0
	for p := range a {
		if b[p] {
			common++
		}
	}

	return float64(common) / float64(len(a))
}

func pairingSet(pairings []tournament.Pairing) map[tournament.Pairing]bool {
	set := make(map[tournament.Pairing]bool, len(pairings))
	for _, p := range pairings {
		set[p] = true
	}
	return set
}
