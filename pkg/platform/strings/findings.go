// Package strings normalises the free-text findings returned by remote verifiers.
package strings

import (
	"strings"
)

// MaxFindings bounds how many findings are kept per artifact. Verifiers sometimes
// echo one message per detected region; the first ones carry the signal.
const MaxFindings = 16

// Findings cleans a verifier's issue or recommendation list: whitespace runs are
// collapsed, blanks dropped and repeats removed case-insensitively, keeping the
// first spelling and the verifier's order. It returns nil when nothing is left.
func Findings(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		f := strings.Join(strings.Fields(v), " ")
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
		if len(out) == MaxFindings {
			break
		}
	}
	return out
}
