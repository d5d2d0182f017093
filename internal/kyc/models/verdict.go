package models

// VerdictKind tags the terminal decision.
type VerdictKind string

const (
	VerdictApproved     VerdictKind = "approved"
	VerdictRejected     VerdictKind = "rejected"
	VerdictManualReview VerdictKind = "manual_review"
)

// RejectReason explains an automatic rejection.
type RejectReason string

const (
	ReasonTamperingSuspected RejectReason = "tampering_suspected"
	ReasonLowConfidence      RejectReason = "low_confidence"
	ReasonIncompleteEvidence RejectReason = "incomplete_evidence"
	ReasonAbandoned          RejectReason = "abandoned"
)

// ReviewPriority orders the manual review queue.
type ReviewPriority string

const (
	PriorityNormal ReviewPriority = "normal"
	PriorityHigh   ReviewPriority = "high"
)

// Verdict is the terminal outcome of a session. The variants are value types, so a
// verdict cannot be changed after the decision engine builds it.
type Verdict interface {
	Kind() VerdictKind
	sealed()
}

type Approved struct {
	Confidence float64
}

type Rejected struct {
	Reason RejectReason
}

type ManualReview struct {
	CaseID   string
	Priority ReviewPriority
}

func (Approved) Kind() VerdictKind     { return VerdictApproved }
func (Rejected) Kind() VerdictKind     { return VerdictRejected }
func (ManualReview) Kind() VerdictKind { return VerdictManualReview }

func (Approved) sealed()     {}
func (Rejected) sealed()     {}
func (ManualReview) sealed() {}
