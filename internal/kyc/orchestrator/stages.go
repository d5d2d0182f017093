package orchestrator

import (
	"context"
	"fmt"

	"idproof/internal/kyc/decision"
	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
	dErrors "idproof/pkg/domain-errors"
	"idproof/pkg/platform/audit"
	"idproof/pkg/requestcontext"
)

// stageHandler runs the work owned by one stage and reports whether the session
// moved on. The terminal stage has no handler.
type stageHandler func(ctx context.Context, sess *models.Session) (bool, error)

func (s *Service) stageHandlers() map[models.Stage]stageHandler {
	return map[models.Stage]stageHandler{
		models.StageChannelPending:  s.advanceFrom(models.StageChannelPending),
		models.StageDocumentPending: s.advanceFrom(models.StageDocumentPending),
		models.StageLivenessPending: s.advanceFrom(models.StageLivenessPending),
		models.StageDeciding:        s.decide,
	}
}

// progress runs stage handlers until one reports no movement.
func (s *Service) progress(ctx context.Context, sess *models.Session) error {
	for range len(s.stages) + 1 {
		handler, ok := s.stages[sess.Stage()]
		if !ok {
			return nil
		}
		moved, err := handler(ctx, sess)
		if err != nil || !moved {
			return err
		}
	}
	return nil
}

// advanceFrom moves past stage once its completion predicate holds.
func (s *Service) advanceFrom(stage models.Stage) stageHandler {
	return func(ctx context.Context, sess *models.Session) (bool, error) {
		moved, err := sess.Advance(stage, requestcontext.Now(ctx))
		if err != nil {
			// another request moved the session first
			if dErrors.HasCode(err, dErrors.CodeInvalidState) || dErrors.HasCode(err, dErrors.CodeSessionTerminal) {
				return false, nil
			}
			return false, err
		}
		if moved {
			next, _ := stage.Next()
			s.stageChanged(ctx, sess.ID, stage, next)
		}
		return moved, nil
	}
}

// decide issues the verdict, hands the result off and drops the session from the
// working store. The verdict audit record is written before the session becomes
// terminal; if it cannot be written the session stays in deciding.
func (s *Service) decide(ctx context.Context, sess *models.Session) (bool, error) {
	if _, busy := s.finalizing.LoadOrStore(sess.ID, struct{}{}); busy {
		return false, nil
	}
	defer s.finalizing.Delete(sess.ID)

	view := sess.Snapshot()
	if view.Stage != models.StageDeciding {
		return false, nil
	}
	outcome := s.engine.Decide(decision.InputFromView(view))
	kind, detail := describe(outcome.Verdict)

	if err := s.emit(ctx, view, audit.EventVerdictIssued, string(kind), detail); err != nil {
		return false, models.ErrAuditUnavailable(err)
	}
	if err := sess.Terminate(outcome.Verdict, requestcontext.Now(ctx)); err != nil {
		return false, err
	}
	final := sess.Snapshot()
	s.stageChanged(ctx, sess.ID, models.StageDeciding, models.StageTerminal)

	s.metrics.IncVerdict(string(kind), detail)
	if !view.Abandoned && outcome.Aggregate > 0 {
		s.metrics.ObserveAggregate(outcome.Aggregate)
	}
	s.logger.InfoContext(ctx, "verdict issued",
		"session_id", sess.ID.String(),
		"verdict", kind,
		"detail", detail,
		"aggregate", outcome.Aggregate,
		"penalty", outcome.Penalty,
	)

	result := ports.Result{
		SessionID: sess.ID,
		Approved:  kind == models.VerdictApproved,
		Verdict:   outcome.Verdict,
		Artifacts: ports.Artifacts{
			Front:      final.Document(models.SideFront),
			Back:       final.Document(models.SideBack),
			Liveness:   final.Liveness,
			Comparison: final.Comparison,
		},
	}
	if review, ok := outcome.Verdict.(models.ManualReview); ok {
		if err := s.emit(ctx, final, audit.EventManualReviewEscalated, string(kind), string(review.Priority)); err != nil {
			s.logger.ErrorContext(ctx, "manual review escalation not recorded", "session_id", sess.ID.String(), "error", err)
		}
		if s.tickets != nil {
			ticket, err := s.tickets.IssueReviewTicket(ctx, sess.ID, review)
			if err != nil {
				s.logger.ErrorContext(ctx, "review ticket not issued", "session_id", sess.ID.String(), "error", err)
			}
			result.ReviewTicket = ticket
		}
	}

	if err := s.handoff.Deliver(ctx, result); err != nil {
		s.metrics.IncHandoffFailure(fmt.Sprintf("%T", s.handoff))
		s.logger.ErrorContext(ctx, "hand-off delivery failed", "session_id", sess.ID.String(), "error", err)
	}

	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to drop terminal session", "session_id", sess.ID.String(), "error", err)
	}
	if err := s.steps.Channel.Discard(ctx, sess.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to discard code state", "session_id", sess.ID.String(), "error", err)
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	return true, nil
}

func (s *Service) stageChanged(ctx context.Context, id models.SessionID, from, to models.Stage) {
	s.metrics.IncStageTransition(string(to))
	s.notifier.StageChanged(ctx, id, from, to)
	s.logger.DebugContext(ctx, "stage changed", "session_id", id.String(), "from", from, "to", to)
}

// describe flattens a verdict into a kind and a detail label.
func describe(v models.Verdict) (models.VerdictKind, string) {
	switch v := v.(type) {
	case models.Approved:
		return v.Kind(), ""
	case models.Rejected:
		return v.Kind(), string(v.Reason)
	case models.ManualReview:
		return v.Kind(), string(v.Priority)
	default:
		return "", ""
	}
}
