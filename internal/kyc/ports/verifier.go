package ports

import (
	"context"

	"idproof/internal/kyc/models"
)

//go:generate mockgen -source=verifier.go -destination=mocks/verifier_mock.go -package=mocks

// ChannelVerifier sends and checks one-time codes through the remote service.
type ChannelVerifier interface {
	SendChannelCode(ctx context.Context, req SendCodeRequest) (SendCodeResult, error)
	CheckChannelCode(ctx context.Context, req CheckCodeRequest) (bool, error)
}

// DocumentVerifier validates one side of an identity document.
type DocumentVerifier interface {
	ValidateDocumentImage(ctx context.Context, image []byte, side models.Side) (ValidationResult, error)
}

// LivenessVerifier validates a selfie for liveness and quality.
type LivenessVerifier interface {
	ValidateLivenessImage(ctx context.Context, image []byte) (ValidationResult, error)
}

// FaceComparer scores document-face vs selfie similarity (strict profile).
type FaceComparer interface {
	CompareFaces(ctx context.Context, documentImage, selfie []byte) (ValidationResult, error)
}

type SendCodeRequest struct {
	Channel models.Channel
	Contact string
	Purpose models.Purpose
}

type SendCodeResult struct {
	MaskedContact string
}

type CheckCodeRequest struct {
	Channel models.Channel
	Contact string
	Code    string
	Purpose models.Purpose
}

// ValidationResult is the black-box verdict of a remote validator.
type ValidationResult struct {
	Valid           bool
	Confidence      float64
	Issues          []string
	Recommendations []string
}
