// Package document validates the front and back of an identity document. Each
// side is an independent slot; sides may be submitted in either order or together.
package document

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
	verifier ports.DocumentVerifier
	logger   *slog.Logger
}

type Option func(*Step)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Step) {
		s.logger = logger
	}
}

func New(v ports.DocumentVerifier, opts ...Option) *Step {
	s := &Step{verifier: v, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates one side. An invalid document is a normal result carrying issues
// and recommendations; only remote failures are returned as errors. A result that
// arrives after the session moved on is reported with ErrStaleResult and not applied.
func (s *Step) Submit(ctx context.Context, sess *models.Session, side models.Side, capture models.Capture) (models.DocumentArtifact, error) {
	if !side.IsValid() {
		return models.DocumentArtifact{}, models.ErrIllegalSide(side)
	}
	if capture.IsEmpty() {
		return models.DocumentArtifact{}, models.ErrEmptyCapture()
	}

	ticket, err := sess.Begin(models.DocumentSlot(side), requestcontext.Now(ctx))
	if err != nil {
		return models.DocumentArtifact{}, err
	}

	res, err := verifier.RetryOnce(ctx, func(ctx context.Context) (ports.ValidationResult, error) {
		return s.verifier.ValidateDocumentImage(ctx, capture.Data, side)
	})
	if err != nil {
		sess.Abort(ticket)
		s.logger.WarnContext(ctx, "document validation failed",
			"session_id", sess.ID.String(),
			"side", side,
			"category", verifier.GetCategory(err),
		)
		return models.DocumentArtifact{}, models.ErrValidation(err)
	}

	now := requestcontext.Now(ctx)
	artifact := models.DocumentArtifact{
		ImageRef:        capture.Ref,
		IsValid:         res.Valid,
		Confidence:      models.ClampConfidence(res.Confidence),
		Issues:          strings.Findings(res.Issues),
		Recommendations: strings.Findings(res.Recommendations),
		CapturedAt:      now,
	}
	var image []byte
	if side == models.SideFront {
		image = capture.Data
	}
	if err := sess.CompleteDocumentCapture(ticket, artifact, image, now); err != nil {
		return models.DocumentArtifact{}, err
	}
	return artifact, nil
}
