package decision

import (
	"regexp"
	"strings"
)

// IssueCategory groups verifier issue strings by how much they hurt confidence.
type IssueCategory string

const (
	IssueQuality   IssueCategory = "quality"
	IssueMismatch  IssueCategory = "mismatch"
	IssueTampering IssueCategory = "tampering"
)

var penalties = map[IssueCategory]float64{
	IssueQuality:   5,
	IssueMismatch:  15,
	IssueTampering: 30,
}

// Markers match whole words so quality remarks that merely mention authenticity
// features or uneven lighting stay quality issues.
var (
	tamperingMarkers = regexp.MustCompile(`\b(tamper\w*|forged|forger(y|ies)|counterfeit\w*|altered|manipulat\w*|not authentic|inauthentic|spoof\w*|replay\w*|deepfake\w*|fraud\w*)\b`)
	mismatchMarkers  = regexp.MustCompile(`\b(mismatch\w*|does not match|doesn't match|different person|inconsistent (data|dates?|details|fields?|information|names?)|inconsistent with)\b`)
)

// Classify maps a free-text issue to a category. Anything not recognised as
// tampering or a mismatch is a capture quality problem.
func Classify(issue string) IssueCategory {
	lower := strings.ToLower(issue)
	switch {
	case tamperingMarkers.MatchString(lower):
		return IssueTampering
	case mismatchMarkers.MatchString(lower):
		return IssueMismatch
	default:
		return IssueQuality
	}
}

func countIssues(in Input) map[IssueCategory]int {
	counts := map[IssueCategory]int{}
	add := func(issues []string) {
		for _, issue := range issues {
			counts[Classify(issue)]++
		}
	}
	if in.Front != nil {
		add(in.Front.Issues)
	}
	if in.Back != nil {
		add(in.Back.Issues)
	}
	if in.Liveness != nil {
		add(in.Liveness.Issues)
	}
	if in.Comparison != nil {
		add(in.Comparison.Issues)
	}
	return counts
}

func penalty(counts map[IssueCategory]int) float64 {
	var total float64
	for cat, n := range counts {
		total += penalties[cat] * float64(n)
	}
	return total
}
