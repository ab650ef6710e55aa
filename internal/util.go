/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
func ParseDateOrZero(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

// NormalizeName collapses whitespace and title cases each word, so
// "BEHR,  RUFUS" and "behr, rufus" both become "Behr, Rufus".
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	upper := true
	for i, r := range runes {
		if upper && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			upper = false
		}
		// O'Brien, Smith-Jones
		if r == '-' || r == '\'' {
			upper = true
		}
	}
	return string(runes)
}

// ScoreToString renders a tournament score without trailing zeros: "2",
// "2.5" and "0.5".
func ScoreToString(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
