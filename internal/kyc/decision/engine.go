// Package decision turns a session's evidence into a verdict. It performs no I/O
// and the same input always yields the same verdict, including the review case id.
package decision

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"idproof/internal/kyc/models"
)

// caseNamespace seeds the UUIDv5 review case ids.
var caseNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("idproof/kyc/manual-review"))

// Policy holds the tunable thresholds and weights.
type Policy struct {
	ApproveAtOrAbove float64
	RejectBelow      float64
	// HighPriorityBand is the distance above RejectBelow within which a review is urgent.
	HighPriorityBand float64

	FrontWeight      float64
	BackWeight       float64
	LivenessWeight   float64
	ComparisonWeight float64
}

func DefaultPolicy() Policy {
	return Policy{
		ApproveAtOrAbove: 80,
		RejectBelow:      50,
		HighPriorityBand: 5,
		FrontWeight:      0.35,
		BackWeight:       0.25,
		LivenessWeight:   0.40,
		ComparisonWeight: 0.20,
	}
}

// Input is everything the engine looks at.
type Input struct {
	SessionID       models.SessionID
	ChannelVerified bool
	Abandoned       bool
	// RequireComparison makes a missing comparison incomplete evidence.
	RequireComparison bool

	Front      *models.DocumentArtifact
	Back       *models.DocumentArtifact
	Liveness   *models.BiometricArtifact
	Comparison *models.BiometricArtifact
}

// InputFromView reads the decision input off a session snapshot.
func InputFromView(v models.SessionView) Input {
	return Input{
		SessionID:         v.ID,
		ChannelVerified:   v.ChannelVerified,
		Abandoned:         v.Abandoned,
		RequireComparison: v.Profile == models.ProfileStrict,
		Front:             v.Document(models.SideFront),
		Back:              v.Document(models.SideBack),
		Liveness:          v.Liveness,
		Comparison:        v.Comparison,
	}
}

// Outcome is the verdict plus the numbers that produced it, for logs and metrics.
type Outcome struct {
	Verdict   models.Verdict
	Aggregate float64
	Penalty   float64
	Issues    map[IssueCategory]int
}

type Engine struct {
	policy Policy
}

func New(p Policy) *Engine {
	return &Engine{policy: p}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Decide applies the rules in order: tampering, abandonment, incomplete evidence,
// low confidence, approval, and finally manual review. Tampering wins over
// abandonment so a user cannot hide a forged document by walking away.
func (e *Engine) Decide(in Input) Outcome {
	issues := countIssues(in)
	out := Outcome{Issues: issues}

	if issues[IssueTampering] > 0 {
		out.Verdict = models.Rejected{Reason: models.ReasonTamperingSuspected}
		return out
	}
	if in.Abandoned {
		out.Verdict = models.Rejected{Reason: models.ReasonAbandoned}
		return out
	}
	if !complete(in) {
		out.Verdict = models.Rejected{Reason: models.ReasonIncompleteEvidence}
		return out
	}

	out.Penalty = penalty(issues)
	out.Aggregate = round2(clamp(e.weightedMean(in) - out.Penalty))

	p := e.policy
	switch {
	case out.Aggregate < p.RejectBelow:
		out.Verdict = models.Rejected{Reason: models.ReasonLowConfidence}
	case out.Aggregate >= p.ApproveAtOrAbove && allValid(in):
		out.Verdict = models.Approved{Confidence: out.Aggregate}
	default:
		priority := models.PriorityNormal
		if out.Aggregate < p.RejectBelow+p.HighPriorityBand || !allValid(in) || issues[IssueMismatch] > 0 {
			priority = models.PriorityHigh
		}
		out.Verdict = models.ManualReview{CaseID: CaseID(in), Priority: priority}
	}
	return out
}

func (e *Engine) weightedMean(in Input) float64 {
	p := e.policy
	base := p.FrontWeight + p.BackWeight + p.LivenessWeight
	if base <= 0 {
		return 0
	}
	mean := (p.FrontWeight*in.Front.Confidence +
		p.BackWeight*in.Back.Confidence +
		p.LivenessWeight*in.Liveness.Confidence) / base

	if in.Comparison == nil || in.Comparison.Pending {
		return mean
	}
	cw := math.Min(math.Max(p.ComparisonWeight, 0), 1)
	return (1-cw)*mean + cw*in.Comparison.Confidence
}

func complete(in Input) bool {
	if !in.ChannelVerified {
		return false
	}
	if missingDoc(in.Front) || missingDoc(in.Back) || missingBio(in.Liveness) {
		return false
	}
	return !in.RequireComparison || !missingBio(in.Comparison)
}

func missingDoc(a *models.DocumentArtifact) bool {
	return a == nil || a.Pending
}

func missingBio(a *models.BiometricArtifact) bool {
	return a == nil || a.Pending
}

func allValid(in Input) bool {
	if !in.Front.IsValid || !in.Back.IsValid || !in.Liveness.IsValid {
		return false
	}
	return in.Comparison == nil || in.Comparison.Pending || in.Comparison.IsValid
}

// CaseID derives the review case id from the session id and the canonical input.
func CaseID(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|ch=%t|ab=%t|rc=%t", in.SessionID, in.ChannelVerified, in.Abandoned, in.RequireComparison)
	writeDoc(&b, "front", in.Front)
	writeDoc(&b, "back", in.Back)
	writeBio(&b, "liveness", in.Liveness)
	writeBio(&b, "comparison", in.Comparison)
	return uuid.NewSHA1(caseNamespace, []byte(b.String())).String()
}

func writeDoc(b *strings.Builder, name string, a *models.DocumentArtifact) {
	if a == nil {
		fmt.Fprintf(b, "|%s=nil", name)
		return
	}
	fmt.Fprintf(b, "|%s=%t,%.2f,%t,[%s]", name, a.IsValid, a.Confidence, a.Pending, strings.Join(a.Issues, ";"))
}

func writeBio(b *strings.Builder, name string, a *models.BiometricArtifact) {
	if a == nil {
		fmt.Fprintf(b, "|%s=nil", name)
		return
	}
	fmt.Fprintf(b, "|%s=%t,%.2f,%t,[%s]", name, a.IsValid, a.Confidence, a.Pending, strings.Join(a.Issues, ";"))
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
