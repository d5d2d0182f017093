package handler

import (
	"time"

	"idproof/internal/kyc/handoff"
	"idproof/internal/kyc/models"
)

// SessionResponse is the public view of a session. Contact data is never echoed.
type SessionResponse struct {
	ID              string            `json:"id"`
	Stage           models.Stage      `json:"stage"`
	Profile         models.Profile    `json:"profile"`
	Device          string            `json:"device,omitempty"`
	ChannelVerified bool              `json:"channel_verified"`
	VerifiedChannel models.Channel    `json:"verified_channel,omitempty"`
	Documents       DocumentsResponse `json:"documents"`
	Liveness        *ArtifactResponse `json:"liveness,omitempty"`
	Comparison      *ArtifactResponse `json:"comparison,omitempty"`
	Verdict         *handoff.Verdict  `json:"verdict,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ExpiresAt       time.Time         `json:"expires_at"`
}

type DocumentsResponse struct {
	Front *ArtifactResponse `json:"front,omitempty"`
	Back  *ArtifactResponse `json:"back,omitempty"`
}

// ArtifactResponse shows a slot. Pending means a validation is outstanding or was
// cleared by a retake; only the image reference is meaningful then.
type ArtifactResponse struct {
	ImageRef        string    `json:"image_ref,omitempty"`
	Pending         bool      `json:"pending"`
	InFlight        bool      `json:"in_flight,omitempty"`
	Valid           bool      `json:"valid"`
	Confidence      float64   `json:"confidence"`
	Issues          []string  `json:"issues,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	CapturedAt      time.Time `json:"captured_at,omitzero"`
}

type RequestCodeResponse struct {
	MaskedContact string `json:"masked_contact"`
}

func FromView(v models.SessionView) SessionResponse {
	resp := SessionResponse{
		ID:              v.ID.String(),
		Stage:           v.Stage,
		Profile:         v.Profile,
		Device:          v.Device,
		ChannelVerified: v.ChannelVerified,
		VerifiedChannel: v.VerifiedChannel,
		Documents: DocumentsResponse{
			Front: fromDocument(v.Document(models.SideFront), v.DocumentInFlight[models.SideFront]),
			Back:  fromDocument(v.Document(models.SideBack), v.DocumentInFlight[models.SideBack]),
		},
		Liveness:   fromBiometric(v.Liveness, v.LivenessInFlight),
		Comparison: fromBiometric(v.Comparison, false),
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		ExpiresAt:  v.ExpiresAt,
	}
	if v.Verdict != nil {
		verdict := handoff.VerdictOf(v.Verdict)
		resp.Verdict = &verdict
	}
	return resp
}

func fromDocument(a *models.DocumentArtifact, inFlight bool) *ArtifactResponse {
	if a == nil {
		if inFlight {
			return &ArtifactResponse{Pending: true, InFlight: true}
		}
		return nil
	}
	return &ArtifactResponse{
		ImageRef:        a.ImageRef,
		Pending:         a.Pending,
		InFlight:        inFlight,
		Valid:           a.IsValid,
		Confidence:      a.Confidence,
		Issues:          a.Issues,
		Recommendations: a.Recommendations,
		CapturedAt:      a.CapturedAt,
	}
}

func fromBiometric(a *models.BiometricArtifact, inFlight bool) *ArtifactResponse {
	if a == nil {
		if inFlight {
			return &ArtifactResponse{Pending: true, InFlight: true}
		}
		return nil
	}
	return &ArtifactResponse{
		ImageRef:   a.ImageRef,
		Pending:    a.Pending,
		InFlight:   inFlight,
		Valid:      a.IsValid,
		Confidence: a.Confidence,
		Issues:     a.Issues,
		CapturedAt: a.CapturedAt,
	}
}
