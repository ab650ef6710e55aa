/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package engine

import (
	"fmt"
	"strings"
)

// exit statuses documented by bbpPairings
const (
	ExitNoValidPairing  = 1
	ExitUnexpectedError = 2
	ExitInvalidRequest  = 3
	ExitLimitExceeded   = 4
	ExitFileError       = 5
)

var exitReasons = map[int]string{
	ExitNoValidPairing:  "no valid pairing exists",
	ExitUnexpectedError: "unexpected error",
	ExitInvalidRequest:  "invalid request",
	ExitLimitExceeded:   "build limit exceeded",
	ExitFileError:       "file error",
}

// Failure reports an engine process that could not be started or exited
// with a nonzero status. ExitCode is -1 when the process never ran to
// completion.
type Failure struct {
	Round     int
	Algorithm Algorithm
	ExitCode  int
	Stdout    string
	Stderr    string
	Err       error
}

// Reason describes the exit code in words.
func (f *Failure) Reason() string {
	if f.ExitCode < 0 {
		return "engine did not run to completion"
	}
	if r, ok := exitReasons[f.ExitCode]; ok {
		return r
	}
	return "unknown exit status"
}

func (f *Failure) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("round %d: %v engine failed", f.Round,
		f.Algorithm))
	if f.ExitCode >= 0 {
		sb.WriteString(fmt.Sprintf(" with exit code %d (%v)", f.ExitCode,
			f.Reason()))
	}
	if f.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", f.Err))
	}
	if out := strings.TrimSpace(f.Stdout); out != "" {
		sb.WriteString(fmt.Sprintf("; output: %v", out))
	}
	if out := strings.TrimSpace(f.Stderr); out != "" {
		sb.WriteString(fmt.Sprintf("; stderr: %v", out))
	}

	return sb.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}
