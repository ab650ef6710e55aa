/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package engine

import (
	"fmt"
	"strings"
)

// Algorithm names a pairing system understood by the engine. The engine
// selects it with a --<name> flag.
type Algorithm string

const (
	Dutch    Algorithm = "dutch"
	Burstein Algorithm = "burstein"
	Fast     Algorithm = "fast"

	DefaultAlgorithm = Fast
)

var Algorithms = []Algorithm{Dutch, Burstein, Fast}

func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown pairing algorithm %q (want dutch, burstein or fast)",
		s)
}

func (a Algorithm) Flag() string {
	return "--" + string(a)
}

func (a Algorithm) String() string {
	return string(a)
}
