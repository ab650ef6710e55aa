/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package simulate

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// Source yields uniform samples in [0,1).
type Source interface {
	Float64() float64
}

// CryptoSource draws samples from the operating system's CSPRNG so results
// cannot be predicted from earlier games.
type CryptoSource struct{}

func (CryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS source is unusable
		panic("simulate: crypto/rand unavailable: " + err.Error())
	}
	// 53 random bits scaled into [0,1)
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// Sequence replays fixed samples in order and wraps around when exhausted.
type Sequence struct {
	mu      sync.Mutex
	samples []float64
	next    int
}

func NewSequence(samples ...float64) *Sequence {
	if len(samples) == 0 {
		samples = []float64{0}
	}
	return &Sequence{samples: samples}
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.samples[s.next%len(s.samples)]
	s.next++
	return v
}
