// Package liveness validates the selfie capture and, for the strict profile,
// compares it against the face on the document front.
package liveness

import (
	"context"
	"log/slog"

	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
	"idproof/internal/kyc/verifier"
	"idproof/pkg/platform/strings"
	"idproof/pkg/requestcontext"
)

type Step struct {
	liveness ports.LivenessVerifier
	comparer ports.FaceComparer
	logger   *slog.Logger
}

type Option func(*Step)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Step) {
		s.logger = logger
	}
}

// WithFaceComparer enables the document vs selfie comparison.
func WithFaceComparer(c ports.FaceComparer) Option {
	return func(s *Step) {
		s.comparer = c
	}
}

func New(v ports.LivenessVerifier, opts ...Option) *Step {
	s := &Step{liveness: v, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the selfie. Same slot rules as a document side: one submission
// in flight, validation cleared at start, latest result replaces the previous one.
func (s *Step) Submit(ctx context.Context, sess *models.Session, capture models.Capture) (models.BiometricArtifact, error) {
	if capture.IsEmpty() {
		return models.BiometricArtifact{}, models.ErrEmptyCapture()
	}
	return s.run(ctx, sess, models.SlotLiveness, capture.Ref, func(ctx context.Context) (ports.ValidationResult, error) {
		return s.liveness.ValidateLivenessImage(ctx, capture.Data)
	})
}

// Compare scores the selfie against the retained document front image.
func (s *Step) Compare(ctx context.Context, sess *models.Session, selfie models.Capture) (models.BiometricArtifact, error) {
	if s.comparer == nil {
		return models.BiometricArtifact{}, models.ErrComparisonUnavailable()
	}
	if selfie.IsEmpty() {
		return models.BiometricArtifact{}, models.ErrEmptyCapture()
	}
	face := sess.FaceImage()
	if len(face) == 0 {
		return models.BiometricArtifact{}, models.ErrComparisonUnavailable()
	}
	return s.run(ctx, sess, models.SlotComparison, selfie.Ref, func(ctx context.Context) (ports.ValidationResult, error) {
		return s.comparer.CompareFaces(ctx, face, selfie.Data)
	})
}

func (s *Step) run(ctx context.Context, sess *models.Session, sl models.Slot, ref string, call func(context.Context) (ports.ValidationResult, error)) (models.BiometricArtifact, error) {
	ticket, err := sess.Begin(sl, requestcontext.Now(ctx))
	if err != nil {
		return models.BiometricArtifact{}, err
	}

	res, err := verifier.RetryOnce(ctx, call)
	if err != nil {
		sess.Abort(ticket)
		s.logger.WarnContext(ctx, "biometric validation failed",
			"session_id", sess.ID.String(),
			"slot", sl,
			"category", verifier.GetCategory(err),
		)
		return models.BiometricArtifact{}, models.ErrValidation(err)
	}

	now := requestcontext.Now(ctx)
	artifact := models.BiometricArtifact{
		ImageRef:   ref,
		IsValid:    res.Valid,
		Confidence: models.ClampConfidence(res.Confidence),
		Issues:     strings.Findings(res.Issues),
		CapturedAt: now,
	}
	if err := sess.CompleteBiometric(ticket, artifact, now); err != nil {
		return models.BiometricArtifact{}, err
	}
	return artifact, nil
}
