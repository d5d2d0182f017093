package orchestrator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"idproof/internal/kyc/models"
	dErrors "idproof/pkg/domain-errors"
	"idproof/pkg/platform/audit"
	"idproof/pkg/requestcontext"
)

// RequestCode sends a one-time code to the session's contact on ch.
func (s *Service) RequestCode(ctx context.Context, id models.SessionID, ch models.Channel, purpose models.Purpose) (masked string, err error) {
	ctx, end := s.span(ctx, "RequestCode", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	masked, err = s.steps.Channel.RequestCode(ctx, sess, ch, purpose)
	if err != nil {
		return "", err
	}
	s.metrics.IncChannelCode(string(ch), "sent")
	s.emit(ctx, sess.Snapshot(), audit.EventChannelCodeSent, string(ch), "")
	return masked, nil
}

// SubmitCode checks a code. On success the session moves to the document stage.
func (s *Service) SubmitCode(ctx context.Context, id models.SessionID, ch models.Channel, code string) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "SubmitCode", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}

	err = s.steps.Channel.SubmitCode(ctx, sess, ch, code)
	switch {
	case err == nil:
		s.metrics.IncChannelCode(string(ch), "verified")
		s.stageChanged(ctx, id, models.StageChannelPending, models.StageDocumentPending)
		s.emit(ctx, sess.Snapshot(), audit.EventChannelVerified, string(ch), "")
		if err := s.progress(ctx, sess); err != nil {
			return sess.Snapshot(), err
		}
	case dErrors.HasCode(err, dErrors.CodeAttemptsExhausted):
		s.metrics.IncChannelCode(string(ch), "exhausted")
		s.emit(ctx, sess.Snapshot(), audit.EventChannelAttemptsExhausted, string(ch), "")
		s.logger.WarnContext(ctx, "channel code attempts exhausted", "session_id", id.String(), "channel", ch)
	case dErrors.HasCode(err, dErrors.CodeIncorrectCode):
		s.metrics.IncChannelCode(string(ch), "incorrect")
	case dErrors.HasCode(err, dErrors.CodeCodeExpired):
		s.metrics.IncChannelCode(string(ch), "expired")
	}
	return sess.Snapshot(), err
}

// SubmitDocument validates one document side and advances once both are valid.
func (s *Service) SubmitDocument(ctx context.Context, id models.SessionID, side models.Side, capture models.Capture) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "SubmitDocument", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}
	if err := s.submitSide(ctx, sess, side, capture); err != nil {
		return sess.Snapshot(), err
	}
	err = s.progress(ctx, sess)
	return sess.Snapshot(), err
}

// SubmitDocuments validates front and back concurrently. Each side is applied on
// its own; a failure on one side does not discard the other side's result.
func (s *Service) SubmitDocuments(ctx context.Context, id models.SessionID, front, back models.Capture) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "SubmitDocuments", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}

	var g errgroup.Group
	g.Go(func() error { return s.submitSide(ctx, sess, models.SideFront, front) })
	g.Go(func() error { return s.submitSide(ctx, sess, models.SideBack, back) })
	if err := g.Wait(); err != nil {
		return sess.Snapshot(), err
	}
	err = s.progress(ctx, sess)
	return sess.Snapshot(), err
}

func (s *Service) submitSide(ctx context.Context, sess *models.Session, side models.Side, capture models.Capture) error {
	slot := models.DocumentSlot(side)
	start := time.Now()
	artifact, err := s.steps.Document.Submit(ctx, sess, side, capture)
	if err != nil {
		return s.settleFailure(ctx, sess, slot, start, err)
	}
	s.metrics.ObserveValidation(string(slot), validity(artifact.IsValid), time.Since(start))
	s.emit(ctx, sess.Snapshot(), audit.EventDocumentValidated, validity(artifact.IsValid), string(side))
	return nil
}

// SubmitLiveness validates the selfie; for the strict profile a valid selfie is
// then compared against the document front.
func (s *Service) SubmitLiveness(ctx context.Context, id models.SessionID, selfie models.Capture) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "SubmitLiveness", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}

	start := time.Now()
	artifact, err := s.steps.Liveness.Submit(ctx, sess, selfie)
	if err != nil {
		return sess.Snapshot(), s.settleFailure(ctx, sess, models.SlotLiveness, start, err)
	}
	s.metrics.ObserveValidation(string(models.SlotLiveness), validity(artifact.IsValid), time.Since(start))
	s.emit(ctx, sess.Snapshot(), audit.EventLivenessValidated, validity(artifact.IsValid), "")

	if sess.Profile == models.ProfileStrict && artifact.IsValid {
		start = time.Now()
		cmp, err := s.steps.Liveness.Compare(ctx, sess, selfie)
		if err != nil {
			return sess.Snapshot(), s.settleFailure(ctx, sess, models.SlotComparison, start, err)
		}
		s.metrics.ObserveValidation(string(models.SlotComparison), validity(cmp.IsValid), time.Since(start))
		s.emit(ctx, sess.Snapshot(), audit.EventBiometricCompared, validity(cmp.IsValid), "")
	}

	err = s.progress(ctx, sess)
	return sess.Snapshot(), err
}

// Retake discards the validation of one slot so it can be captured again. It never
// leaves the slot's stage.
func (s *Service) Retake(ctx context.Context, id models.SessionID, slot models.Slot) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "Retake", id)
	defer func() { end(err) }()

	if !slot.IsValid() {
		return models.SessionView{}, models.ErrUnknownSlot(slot)
	}
	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}
	if err := sess.Retake(slot, requestcontext.Now(ctx)); err != nil {
		return sess.Snapshot(), err
	}
	view = sess.Snapshot()
	s.emit(ctx, view, audit.EventArtifactRetake, "", string(slot))
	return view, nil
}

// Abandon ends the session; the decision engine turns it into a rejection and the
// result is handed off like any other verdict.
func (s *Service) Abandon(ctx context.Context, id models.SessionID) (view models.SessionView, err error) {
	ctx, end := s.span(ctx, "Abandon", id)
	defer func() { end(err) }()

	sess, err := s.load(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}
	from := sess.Stage()
	if err := sess.Abandon(requestcontext.Now(ctx)); err != nil {
		return sess.Snapshot(), err
	}
	if from != models.StageDeciding {
		s.stageChanged(ctx, id, from, models.StageDeciding)
	}
	if err := s.emit(ctx, sess.Snapshot(), audit.EventSessionAbandoned, "", string(from)); err != nil {
		s.logger.ErrorContext(ctx, "abandonment not recorded", "session_id", id.String(), "error", err)
	}
	err = s.progress(ctx, sess)
	return sess.Snapshot(), err
}

// settleFailure records a failed or discarded validation. A stale result is not a
// user-facing failure: it is counted and audited, and the caller gets the current view.
func (s *Service) settleFailure(ctx context.Context, sess *models.Session, slot models.Slot, start time.Time, err error) error {
	if !dErrors.HasCode(err, dErrors.CodeStaleResult) {
		if dErrors.HasCode(err, dErrors.CodeValidationFailed) {
			s.metrics.ObserveValidation(string(slot), "error", time.Since(start))
		}
		return err
	}
	s.metrics.ObserveValidation(string(slot), "stale", time.Since(start))
	s.metrics.IncStaleResult(string(slot))
	s.emit(ctx, sess.Snapshot(), audit.EventStaleResultDiscarded, "", string(slot))
	s.logger.InfoContext(ctx, "stale validation result discarded",
		"session_id", sess.ID.String(),
		"slot", slot,
		"detail", err.Error(),
	)
	return nil
}

func validity(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
