// Package handoff delivers terminal verification results to the surrounding
// application. The payload carries image references and scores, never image bytes
// or raw contact data.
package handoff

import (
	"encoding/json"
	"time"

	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
)

// Payload is the wire form of a hand-off: {approved, verdict, artifacts}.
type Payload struct {
	SessionID    string    `json:"session_id"`
	Approved     bool      `json:"approved"`
	Verdict      Verdict   `json:"verdict"`
	Artifacts    Artifacts `json:"artifacts"`
	ReviewTicket string    `json:"review_ticket,omitempty"`
	DeliveredAt  time.Time `json:"delivered_at"`
}

// Verdict flattens the verdict variants; only the fields of Kind are set.
type Verdict struct {
	Kind       models.VerdictKind    `json:"kind"`
	Confidence float64               `json:"confidence,omitempty"`
	Reason     models.RejectReason   `json:"reason,omitempty"`
	CaseID     string                `json:"case_id,omitempty"`
	Priority   models.ReviewPriority `json:"priority,omitempty"`
}

type Artifacts struct {
	DocumentFront *Artifact `json:"document_front,omitempty"`
	DocumentBack  *Artifact `json:"document_back,omitempty"`
	Liveness      *Artifact `json:"liveness,omitempty"`
	Comparison    *Artifact `json:"comparison,omitempty"`
}

type Artifact struct {
	ImageRef        string    `json:"image_ref"`
	Valid           bool      `json:"valid"`
	Confidence      float64   `json:"confidence"`
	Issues          []string  `json:"issues,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	CapturedAt      time.Time `json:"captured_at"`
}

// NewPayload converts a result into its wire form.
func NewPayload(r ports.Result, deliveredAt time.Time) Payload {
	return Payload{
		SessionID:    r.SessionID.String(),
		Approved:     r.Approved,
		Verdict:      VerdictOf(r.Verdict),
		ReviewTicket: r.ReviewTicket,
		DeliveredAt:  deliveredAt.UTC(),
		Artifacts: Artifacts{
			DocumentFront: documentOf(r.Artifacts.Front),
			DocumentBack:  documentOf(r.Artifacts.Back),
			Liveness:      biometricOf(r.Artifacts.Liveness),
			Comparison:    biometricOf(r.Artifacts.Comparison),
		},
	}
}

// Encode returns the JSON payload for r.
func Encode(r ports.Result, deliveredAt time.Time) ([]byte, error) {
	return json.Marshal(NewPayload(r, deliveredAt))
}

// VerdictOf flattens v into its wire form.
func VerdictOf(v models.Verdict) Verdict {
	switch v := v.(type) {
	case models.Approved:
		return Verdict{Kind: v.Kind(), Confidence: v.Confidence}
	case models.Rejected:
		return Verdict{Kind: v.Kind(), Reason: v.Reason}
	case models.ManualReview:
		return Verdict{Kind: v.Kind(), CaseID: v.CaseID, Priority: v.Priority}
	default:
		return Verdict{}
	}
}

func documentOf(a *models.DocumentArtifact) *Artifact {
	if a == nil {
		return nil
	}
	return &Artifact{
		ImageRef:        a.ImageRef,
		Valid:           a.IsValid,
		Confidence:      a.Confidence,
		Issues:          a.Issues,
		Recommendations: a.Recommendations,
		CapturedAt:      a.CapturedAt.UTC(),
	}
}

func biometricOf(a *models.BiometricArtifact) *Artifact {
	if a == nil {
		return nil
	}
	return &Artifact{
		ImageRef:   a.ImageRef,
		Valid:      a.IsValid,
		Confidence: a.Confidence,
		Issues:     a.Issues,
		CapturedAt: a.CapturedAt.UTC(),
	}
}
