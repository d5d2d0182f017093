package orchestrator

import (
	"context"

	"idproof/internal/kyc/models"
	"idproof/pkg/email"
	"idproof/pkg/platform/audit"
	"idproof/pkg/requestcontext"
)

// emit records an audit event for the session. Only compliance events report a
// write failure to the caller; the rest are logged and dropped.
func (s *Service) emit(ctx context.Context, view models.SessionView, action audit.AuditEvent, decisionLabel, reason string) error {
	if s.auditor == nil {
		return nil
	}
	event := audit.Event{
		Timestamp:   requestcontext.Now(ctx),
		SessionID:   view.ID.String(),
		SubjectHash: s.subject(view.Contact),
		Action:      string(action),
		Stage:       string(view.Stage),
		Decision:    decisionLabel,
		Reason:      reason,
		RequestID:   requestcontext.RequestID(ctx),
		CallerID:    requestcontext.CallerID(ctx),
	}
	err := s.auditor.Emit(ctx, event)
	if err == nil {
		return nil
	}
	if action.Category() == audit.CategoryCompliance {
		return err
	}
	s.logger.WarnContext(ctx, "audit event dropped", "action", action, "session_id", view.ID.String(), "error", err)
	return nil
}

// subject is the pseudonymous audit subject for a contact.
func (s *Service) subject(c models.Contact) string {
	if s.hasher == nil {
		return ""
	}
	if c.Email != "" {
		return s.hasher.Hash(email.Normalize(c.Email))
	}
	return s.hasher.Hash(c.Phone)
}
